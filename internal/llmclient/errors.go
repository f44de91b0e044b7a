// Package llmclient holds the concrete provider clients behind llm.Client.
package llmclient

import "errors"

// ErrEmptyCompletion means the provider answered but carried no usable text.
var ErrEmptyCompletion = errors.New("empty completion from provider")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
