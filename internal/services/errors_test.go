package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalError_Classification(t *testing.T) {
	base := errors.New("rate limited")
	err := fmt.Errorf("turn: %w", NewExternalError(KindChat, true, base))

	assert.True(t, Retryable(err))
	assert.Equal(t, KindChat, KindOf(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "chat service: rate limited")
}

func TestExternalError_Terminal(t *testing.T) {
	err := NewExternalError(KindSpeech, false, errors.New("bad voice"))

	assert.False(t, Retryable(err))
	assert.Equal(t, KindSpeech, KindOf(err))
}

func TestPlainErrorIsNotExternal(t *testing.T) {
	err := errors.New("db down")

	assert.False(t, Retryable(err))
	assert.Equal(t, Kind(""), KindOf(err))
}
