package domain

import "errors"

var (
	ErrNetworkFailure    = errors.New("network failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrServer            = errors.New("server error")
	ErrUnauthenticated   = errors.New("unauthenticated")

	ErrSecretNotFound = errors.New("secret not found")
	ErrNoEdit         = errors.New("no pending edit for pair")
)
