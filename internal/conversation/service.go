package conversation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/models"
	"github.com/thereayou/mindsync/internal/services"
)

// ErrSaveInput входящая реплика не сохранилась, до модели дело не дошло
var ErrSaveInput = errors.New("failed to save user message")

type Store interface {
	MessageLoader
	SaveMessage(ctx context.Context, message *models.Message) error
	DeleteUserMessages(ctx context.Context, userID uuid.UUID) error
}

type Reply struct {
	Text  string
	Audio string // base64
}

type VoiceReply struct {
	UserText string
	Reply
}

type Service struct {
	store       Store
	assembler   *Assembler
	model       services.ChatModel
	speech      services.SpeechSynthesizer
	transcriber services.Transcriber
	log         logging.Logger
}

func NewService(
	store Store,
	assembler *Assembler,
	model services.ChatModel,
	speech services.SpeechSynthesizer,
	transcriber services.Transcriber,
	log logging.Logger,
) *Service {
	return &Service{
		store:       store,
		assembler:   assembler,
		model:       model,
		speech:      speech,
		transcriber: transcriber,
		log:         log,
	}
}

// Chat обрабатывает текстовую реплику. Ошибки после сохранения реплики
// пользователя возвращаются как есть; сама реплика остаётся в истории.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, text string) (*Reply, error) {
	if err := s.saveTurn(ctx, userID, models.RoleUser, text); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveInput, err)
	}

	return s.respond(ctx, userID)
}

// Talk распознаёт голосовое сообщение и отвечает на него как Chat.
// Временный файл удаляется в любом случае.
func (s *Service) Talk(ctx context.Context, userID uuid.UUID, audio io.Reader) (*VoiceReply, error) {
	path, err := writeTemp(audio)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn(ctx, "failed to remove temp audio", "path", path, "error", err)
		}
	}()

	userText, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "user said", "user_id", userID, "text", userText)

	if err := s.saveTurn(ctx, userID, models.RoleUser, userText); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveInput, err)
	}

	reply, err := s.respond(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &VoiceReply{UserText: userText, Reply: *reply}, nil
}

// Reset стирает всю историю пользователя
func (s *Service) Reset(ctx context.Context, userID uuid.UUID) error {
	return s.store.DeleteUserMessages(ctx, userID)
}

func (s *Service) respond(ctx context.Context, userID uuid.UUID) (*Reply, error) {
	prompt, err := s.assembler.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	aiText, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := s.saveTurn(ctx, userID, models.RoleAI, aiText); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}
	s.log.Debug(ctx, "ai said", "user_id", userID, "text", aiText)

	audio, err := s.speech.Synthesize(ctx, aiText)
	if err != nil {
		return nil, err
	}

	return &Reply{
		Text:  aiText,
		Audio: base64.StdEncoding.EncodeToString(audio),
	}, nil
}

func (s *Service) saveTurn(ctx context.Context, userID uuid.UUID, role models.Role, content string) error {
	return s.store.SaveMessage(ctx, &models.Message{
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

func writeTemp(audio io.Reader) (string, error) {
	f, err := os.CreateTemp("", "talk-*.webm")
	if err != nil {
		return "", fmt.Errorf("create temp audio: %w", err)
	}

	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp audio: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp audio: %w", err)
	}

	return f.Name(), nil
}
