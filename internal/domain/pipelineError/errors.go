// Package pipelineError is the error model shared by the ingestion and answer
// pipelines. Every coordinator returns *Error so callers can tell a bad request from
// a dependency outage and decide whether a retry makes sense.
package pipelineError

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput  Kind = "invalid_input"
	KindExtraction    Kind = "extraction"
	KindConfiguration Kind = "configuration"
	KindEmbedding     Kind = "embedding"
	KindVectorStore   Kind = "vector_store"
	KindLLM           Kind = "llm"
	KindBusy          Kind = "busy"
	KindInternal      Kind = "internal"
)

var (
	ErrEmptyDocument       = errors.New("failed to extract any meaningful text from the document")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrDimensionMismatch   = errors.New("embedding dimension does not match the collection")
	ErrBlankQuestion       = errors.New("question is empty")
	ErrLockTimeout         = errors.New("timed out waiting for the collection lock")
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindEmbedding, KindVectorStore, KindLLM, KindBusy:
		return true
	default:
		return false
	}
}

// KindOf reports the kind of the outermost *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}

// Wrap keeps an existing *Error untouched and classifies anything else as kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(kind, op, err)
}
