package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
)

// Handler consumes the frames of one connection. HandleMessage is called
// sequentially from the read pump; Close is called once when it exits.
type Handler interface {
	HandleMessage(raw []byte)
	Close()
}

// Heartbeater is implemented by handlers that want to hear about pongs.
// Heartbeat runs on the read pump like HandleMessage.
type Heartbeater interface {
	Heartbeat()
}

type Options struct {
	MaxMessageBytes int64
	SendBuffer      int
	PingInterval    time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = 32 << 10
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	return o
}

var errSlowConsumer = errors.New("send buffer full")

// Client is one websocket connection. It implements domain.Connection.
type Client struct {
	conn    *connWrapper
	id      string
	opts    Options
	logger  logging.Logger
	message chan *WSMessage

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, opts Options, logger logging.Logger) *Client {
	opts = opts.withDefaults()

	return &Client{
		conn:    newConnWrapper(conn),
		id:      uuid.NewString(),
		opts:    opts,
		logger:  logger,
		message: make(chan *WSMessage, opts.SendBuffer),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues evt without blocking. A client whose buffer is full is
// disconnected rather than silently losing events.
func (c *Client) Send(evt domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.message <- &WSMessage{Type: evt.Type, RoomID: evt.RoomID, Data: evt.Data}:
	default:
		c.logger.Warn(logging.Websocket, logging.ExternalService, "closing slow client", map[logging.ExtraKey]any{
			logging.ConnID:       c.id,
			logging.ErrorMessage: errSlowConsumer.Error(),
		})
		c.closeLocked()
		// The writer may hold the conn lock for up to WriteWait.
		go func() { _ = c.conn.Close() }()
	}
}

func (c *Client) closeLocked() {
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.message)
	})
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Run pumps frames until the connection ends. It blocks on the read side
// and returns after handler.Close has been called.
func (c *Client) Run(handler Handler) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump(handler)

	handler.Close()
	c.closeSend()
	<-done
}

func (c *Client) readPump(handler Handler) {
	defer func() {
		_ = c.conn.Close()
	}()

	ws := c.conn.conn
	ws.SetReadLimit(c.opts.MaxMessageBytes)
	_ = ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	heartbeater, _ := handler.(Heartbeater)
	ws.SetPongHandler(func(string) error {
		if heartbeater != nil {
			heartbeater.Heartbeat()
		}
		return ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		messageType, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug(logging.Websocket, logging.ExternalService, "ws read error", map[logging.ExtraKey]any{
					logging.ConnID:       c.id,
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		handler.HandleMessage(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.message:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(c.opts.WriteWait))
				return
			}
			if err := c.conn.WriteJSON(msg, time.Now().Add(c.opts.WriteWait)); err != nil {
				c.logger.Debug(logging.Websocket, logging.ExternalService, "ws write error", map[logging.ExtraKey]any{
					logging.ConnID:       c.id,
					logging.ErrorMessage: err.Error(),
				})
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait)); err != nil {
				return
			}
		}
	}
}
