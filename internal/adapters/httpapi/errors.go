package httpapi

import (
	"errors"
	"fmt"

	"github.com/bnema/pot-cli/internal/domain"
)

type Kind string

const (
	KindNetwork         Kind = "network"
	KindMalformed       Kind = "malformed"
	KindServer          Kind = "server"
	KindUnauthenticated Kind = "unauthenticated"
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return domain.ErrNetworkFailure
	case KindMalformed:
		return domain.ErrMalformedResponse
	case KindUnauthenticated:
		return domain.ErrUnauthenticated
	default:
		return domain.ErrServer
	}
}

// Error is the single failure shape returned by Client. It matches the domain sentinel
// for its Kind with errors.Is.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.sentinel().Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// Message returns the server-provided detail carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
