package messaging

const (
	RoomsQueue      = "oekaki.rooms"
	DeadLetterQueue = "oekaki.dead_letter"
)
