package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNotFound = errors.New("not found")

	// ErrNotOwner is returned when a caller touches a record owned by
	// someone else.
	ErrNotOwner = errors.New("not the owner")

	// ErrSelfDestroy is returned when an admin tries to delete their own
	// account.
	ErrSelfDestroy = errors.New("cannot destroy own admin account")
)

// ValidationError reports every violated field of a create/update attempt.
// Nothing is persisted when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for f, m := range e.Fields {
		msgs = append(msgs, f+" "+m)
	}
	sort.Strings(msgs)
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	// keep the first message per field
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
