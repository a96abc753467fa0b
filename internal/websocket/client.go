package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/mindsync/internal/logging"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Максимальный размер сообщения
	maxMessageSize = 64 * 1024
)

type ClientMessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *Message) error
}

// Client одно соединение пользователя. Сообщения обрабатываются по очереди,
// поэтому ходы диалога внутри соединения не пересекаются.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	log       logging.Logger
	pongWait  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID uuid.UUID, log logging.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Conn:     conn,
		Send:     make(chan []byte, 16),
		log:      log,
		pongWait: pongWait,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// extendReadDeadline сдвигает дедлайн чтения; ping шлётся на 9/10 этого срока
func (c *Client) extendReadDeadline() {
	c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
}

// ReadPump читает сообщения от клиента
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer c.close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.extendReadDeadline()
	c.Conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	for {
		var msg Message
		err := c.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn(c.ctx, "websocket read failed", "error", err)
			}
			break
		}

		switch msg.Type {
		case TypePong:
			continue
		case TypePing:
			c.SendMessage(TypePong, nil)
			continue
		}

		if handler != nil {
			if err := handler.HandleMessage(c.ctx, c, &msg); err != nil {
				c.SendError(err.Error())
			}
		}

		// пока шёл ход, pong не читались
		c.extendReadDeadline()
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// ReadPump закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) SendMessage(msgType MessageType, data interface{}) error {
	msg := Message{
		Type:      msgType,
		Timestamp: time.Now(),
	}

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return err
		}
		msg.Data = jsonData
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.Send <- msgData:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(errorMsg string) {
	c.SendMessage(TypeError, map[string]string{
		"error": errorMsg,
	})
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.Send)
	})
}
