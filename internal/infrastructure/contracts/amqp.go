package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomID string `json:"roomId"`
	Data   []byte `json:"data"`
}

// Routing keys
const (
	EventRoomCreated   = "room.created"
	EventRoomDeleted   = "room.deleted"
	EventRoomExpired   = "room.expired"
	EventRoomFull      = "room.full"
	EventMemberJoined  = "member.joined"
	EventMemberLeft    = "member.left"
	EventRoundStarted  = "round.started"
	EventRoundResolved = "round.resolved"
)

var RoomRoutingKeys = []string{
	EventRoomCreated,
	EventRoomDeleted,
	EventRoomExpired,
	EventRoomFull,
	EventMemberJoined,
	EventMemberLeft,
	EventRoundStarted,
	EventRoundResolved,
}
