package game

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient pumps one websocket connection. The room only ever calls Send and
// Close; reads are forwarded with Submit.
type wsClient struct {
	id       string
	encoding Encoding
	room     *Room
	conn     *websocket.Conn

	send      chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func (c *wsClient) ID() string         { return c.id }
func (c *wsClient) Encoding() Encoding { return c.encoding }

// Send never blocks the room: a slow client drops frames.
func (c *wsClient) Send(msg []byte) {
	select {
	case <-c.closed:
	case c.send <- msg:
	default:
		log.WithField("player", c.id).Debug("Send buffer full, dropping frame")
	}
}

func (c *wsClient) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *wsClient) receiveMessages() {
	defer func() {
		c.room.Disconnect(c.id)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("player", c.id).Warn("Unexpected websocket close")
			}
			return
		}
		c.room.Submit(c.id, message)
	}
}

func (c *wsClient) sendMessages() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.encoding == EncodingMsgpack {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			c.flush(frameType)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes whatever was queued before the close, e.g. a close reason.
func (c *wsClient) flush(frameType int) {
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

// ServeWebSocket upgrades the request and joins the connection to room. The
// session id becomes the player id.
func ServeWebSocket(room *Room, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("Failed to upgrade connection to websocket")
		return
	}

	client := &wsClient{
		id:       uuid.New().String(),
		encoding: ParseEncoding(r.URL.Query().Get("format")),
		room:     room,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		closed:   make(chan struct{}),
	}

	go client.sendMessages()
	room.Connect(client, JoinOptions{Name: r.URL.Query().Get("name")})
	go client.receiveMessages()
}
