package services

import (
	"errors"
	"fmt"
)

// Kind внешнего сервиса, на котором упал ход диалога
type Kind string

const (
	KindChat          Kind = "chat"
	KindSpeech        Kind = "speech"
	KindTranscription Kind = "transcription"
	KindBilling       Kind = "billing"
)

var (
	ErrEmptyCompletion = errors.New("model returned no choices")
	ErrNoCustomer      = errors.New("user has no billing customer")
	ErrBadSignature    = errors.New("invalid webhook signature")
)

// ExternalError ошибка вызова внешнего API
type ExternalError struct {
	Kind      Kind
	Temporary bool
	Err       error
}

func NewExternalError(kind Kind, temporary bool, err error) *ExternalError {
	return &ExternalError{Kind: kind, Temporary: temporary, Err: err}
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Kind, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// Retryable сообщает, есть ли смысл повторить запрос позже
func Retryable(err error) bool {
	var ext *ExternalError
	if errors.As(err, &ext) {
		return ext.Temporary
	}
	return false
}

// KindOf возвращает сервис, на котором произошла ошибка, или ""
func KindOf(err error) Kind {
	var ext *ExternalError
	if errors.As(err, &ext) {
		return ext.Kind
	}
	return ""
}
