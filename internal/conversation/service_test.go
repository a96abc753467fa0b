package conversation

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/mindsync/internal/database"
	"github.com/thereayou/mindsync/internal/database/databasetest"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/models"
	"github.com/thereayou/mindsync/internal/services"
)

type fixture struct {
	db          *database.Database
	model       *fakeModel
	speech      *fakeSpeech
	transcriber *fakeTranscriber
	svc         *Service
	userID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := databasetest.New(t)
	f := &fixture{
		db:          db,
		model:       &fakeModel{reply: "It sounds heavy."},
		speech:      &fakeSpeech{audio: []byte("mp3")},
		transcriber: &fakeTranscriber{text: "I can't sleep"},
		userID:      seed(t, db, 0),
	}
	f.svc = NewService(db, NewAssembler(db, 20), f.model, f.speech, f.transcriber, logging.Nop())
	return f
}

func (f *fixture) history(t *testing.T) []models.Message {
	t.Helper()
	msgs, err := f.db.GetMessages(context.Background(), f.userID)
	require.NoError(t, err)
	return msgs
}

func TestChat_PersistsBothTurns(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Chat(context.Background(), f.userID, "hello")
	require.NoError(t, err)

	assert.Equal(t, "It sounds heavy.", reply.Text)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3")), reply.Audio)

	// модель видит системную инструкцию и только что сохранённую реплику
	require.Len(t, f.model.got, 2)
	assert.Equal(t, services.ModelRoleSystem, f.model.got[0].Role)
	assert.Equal(t, services.ChatMessage{Role: "user", Content: "hello"}, f.model.got[1])

	h := f.history(t)
	require.Len(t, h, 2)
	assert.Equal(t, models.RoleUser, h[0].Role)
	assert.Equal(t, models.RoleAI, h[1].Role)
	assert.Equal(t, "It sounds heavy.", h[1].Content)
}

func TestChat_ModelFailureKeepsUserTurn(t *testing.T) {
	f := newFixture(t)
	f.model.err = services.NewExternalError(services.KindChat, true, errors.New("timeout"))

	_, err := f.svc.Chat(context.Background(), f.userID, "hello")
	require.Error(t, err)
	assert.Equal(t, services.KindChat, services.KindOf(err))
	assert.NotErrorIs(t, err, ErrSaveInput)

	h := f.history(t)
	require.Len(t, h, 1)
	assert.Equal(t, models.RoleUser, h[0].Role)
}

func TestChat_SpeechFailureKeepsReply(t *testing.T) {
	f := newFixture(t)
	f.speech.err = services.NewExternalError(services.KindSpeech, false, errors.New("bad voice"))

	_, err := f.svc.Chat(context.Background(), f.userID, "hello")
	require.Error(t, err)
	assert.Equal(t, services.KindSpeech, services.KindOf(err))
	assert.Len(t, f.history(t), 2)
}

func TestTalk_TranscribesAndCleansUp(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Talk(context.Background(), f.userID, bytes.NewReader([]byte("webm-bytes")))
	require.NoError(t, err)

	assert.Equal(t, "I can't sleep", reply.UserText)
	assert.Equal(t, "It sounds heavy.", reply.Text)
	assert.Equal(t, []byte("webm-bytes"), f.transcriber.content)

	_, statErr := os.Stat(f.transcriber.path)
	assert.True(t, os.IsNotExist(statErr))

	h := f.history(t)
	require.Len(t, h, 2)
	assert.Equal(t, "I can't sleep", h[0].Content)
}

func TestTalk_TranscriptionFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.transcriber.err = services.NewExternalError(services.KindTranscription, false, errors.New("unsupported format"))

	_, err := f.svc.Talk(context.Background(), f.userID, bytes.NewReader([]byte("junk")))
	require.Error(t, err)
	assert.Equal(t, services.KindTranscription, services.KindOf(err))

	_, statErr := os.Stat(f.transcriber.path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, f.history(t))
}

func TestReset_ClearsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Chat(ctx, f.userID, "hello")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(ctx, f.userID))
	assert.Empty(t, f.history(t))
	require.NoError(t, f.svc.Reset(ctx, f.userID))
}
