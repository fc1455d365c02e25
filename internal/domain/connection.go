package domain

// Event is an outbound message addressed to one connection.
type Event struct {
	Type   string
	RoomID string
	Data   any
}

// Connection is a live client handle. Send must not block on the network.
type Connection interface {
	ID() string
	Send(evt Event)
}
