package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/thereayou/mindsync/internal/services"
)

// Подсказка для Whisper, чтобы распознавание держалось темы сессии
const transcriptionPrompt = "Hello? I would like to speak with a psychologist."

type Options struct {
	ChatModel          string
	TTSModel           string
	TTSVoice           string
	TranscriptionModel string
}

// Client реализует ChatModel, SpeechSynthesizer и Transcriber поверх OpenAI
type Client struct {
	api  *openai.Client
	opts Options
}

func NewClient(apiKey string, opts Options) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), opts)
}

func NewClientWithConfig(cfg openai.ClientConfig, opts Options) *Client {
	return &Client{api: openai.NewClientWithConfig(cfg), opts: opts}
}

func (c *Client) Complete(ctx context.Context, messages []services.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.opts.ChatModel,
		Messages: make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(services.KindChat, err)
	}
	if len(resp.Choices) == 0 {
		return "", services.NewExternalError(services.KindChat, false, services.ErrEmptyCompletion)
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(c.opts.TTSModel),
		Input: text,
		Voice: openai.SpeechVoice(c.opts.TTSVoice),
	})
	if err != nil {
		return nil, classify(services.KindSpeech, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, services.NewExternalError(services.KindSpeech, true, fmt.Errorf("read speech: %w", err))
	}

	return audio, nil
}

func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.opts.TranscriptionModel,
		FilePath: path,
		Prompt:   transcriptionPrompt,
	})
	if err != nil {
		return "", classify(services.KindTranscription, err)
	}

	return resp.Text, nil
}

// classify отделяет временные сбои (429, 5xx, сеть) от окончательных
func classify(kind services.Kind, err error) error {
	if errors.Is(err, context.Canceled) {
		return services.NewExternalError(kind, false, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return services.NewExternalError(kind, temporaryStatus(apiErr.HTTPStatusCode), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return services.NewExternalError(kind, temporaryStatus(reqErr.HTTPStatusCode), err)
	}

	return services.NewExternalError(kind, true, err)
}

func temporaryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
