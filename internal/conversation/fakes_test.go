package conversation

import (
	"context"
	"os"

	"github.com/thereayou/mindsync/internal/services"
)

type fakeModel struct {
	reply string
	err   error
	got   []services.ChatMessage
}

func (f *fakeModel) Complete(_ context.Context, messages []services.ChatMessage) (string, error) {
	f.got = messages
	return f.reply, f.err
}

type fakeSpeech struct {
	audio []byte
	err   error
}

func (f *fakeSpeech) Synthesize(context.Context, string) ([]byte, error) {
	return f.audio, f.err
}

type fakeTranscriber struct {
	text    string
	err     error
	path    string
	content []byte
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.path = path
	f.content, _ = os.ReadFile(path)
	return f.text, f.err
}
