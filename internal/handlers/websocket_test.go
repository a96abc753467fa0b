package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/mindsync/internal/conversation"
	"github.com/thereayou/mindsync/internal/database/databasetest"
	"github.com/thereayou/mindsync/internal/handlers/dto"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/middleware"
	"github.com/thereayou/mindsync/internal/models"
	"github.com/thereayou/mindsync/internal/services"
	ws "github.com/thereayou/mindsync/internal/websocket"
)

type stubAI struct{}

func (stubAI) Complete(_ context.Context, msgs []services.ChatMessage) (string, error) {
	return "you said: " + msgs[len(msgs)-1].Content, nil
}

func (stubAI) Synthesize(context.Context, string) ([]byte, error) {
	return []byte("mp3"), nil
}

func (stubAI) Transcribe(context.Context, string) (string, error) {
	return "", nil
}

func dialTestSocket(t *testing.T) (*websocket.Conn, func() []models.Message) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := databasetest.New(t)
	user := &models.User{Email: "ws@example.com", PasswordHash: "h", IsActive: true}
	require.NoError(t, db.SaveUser(context.Background(), user))

	conv := conversation.NewService(db, conversation.NewAssembler(db, 20), stubAI{}, stubAI{}, stubAI{}, logging.Nop())
	h := NewWebSocketHandler(conv, logging.Nop(), func(*http.Request) bool { return true })

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
	}, h.HandleWebSocket)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, func() []models.Message {
		msgs, err := db.GetMessages(context.Background(), user.ID)
		require.NoError(t, err)
		return msgs
	}
}

func send(t *testing.T, conn *websocket.Conn, msgType ws.MessageType, data any) {
	t.Helper()
	msg := ws.Message{Type: msgType, Timestamp: time.Now()}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_ChatTurn(t *testing.T) {
	conn, history := dialTestSocket(t)

	send(t, conn, ws.TypeChat, dto.ChatRequest{Message: "hello there"})

	msg := receive(t, conn)
	require.Equal(t, ws.TypeReply, msg.Type)

	var reply dto.ChatResponse
	require.NoError(t, json.Unmarshal(msg.Data, &reply))
	assert.Equal(t, "you said: hello there", reply.Response)
	assert.NotEmpty(t, reply.Audio)

	assert.Len(t, history(), 2)
}

func TestWebSocket_ResetAndErrors(t *testing.T) {
	conn, history := dialTestSocket(t)

	send(t, conn, ws.TypeChat, dto.ChatRequest{Message: "hi"})
	require.Equal(t, ws.TypeReply, receive(t, conn).Type)

	send(t, conn, ws.TypeReset, nil)
	assert.Equal(t, ws.TypeResetDone, receive(t, conn).Type)
	assert.Empty(t, history())

	send(t, conn, ws.TypeChat, map[string]string{"message": ""})
	assert.Equal(t, ws.TypeError, receive(t, conn).Type)

	send(t, conn, ws.MessageType("dance"), nil)
	msg := receive(t, conn)
	assert.Equal(t, ws.TypeError, msg.Type)
	assert.Contains(t, string(msg.Data), ws.ErrUnknownType.Error())

	send(t, conn, ws.TypePing, nil)
	assert.Equal(t, ws.TypePong, receive(t, conn).Type)
}

func TestWebSocket_RequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWebSocketHandler(nil, logging.Nop(), nil)

	r := gin.New()
	r.GET("/ws", middleware.WSAuthMiddleware(nil, nil), h.HandleWebSocket)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
