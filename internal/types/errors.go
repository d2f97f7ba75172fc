package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoData           = errors.New("no usage data loaded")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrTemplateNotFound = errors.New("rate limit template not found")
	ErrMissingAdminKey  = errors.New("admin API key not configured")
)

// ParseError reports bytes that are not valid JSON. The upload boundary
// translates it to a user-facing message; nothing downstream runs.
type ParseError struct {
	Err error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("invalid JSON: %v", e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a payload that parsed but does not plausibly
// match the shape expected for Kind.
type ValidationError struct {
	Kind    DataKind
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s data: %s", e.Kind, e.Message)
}

// APIError carries a non-2xx response from the administrative API.
type APIError struct {
	Status int
	Detail string
}

func (e APIError) Error() string {
	return fmt.Sprintf("admin API returned status %d: %s", e.Status, e.Detail)
}
