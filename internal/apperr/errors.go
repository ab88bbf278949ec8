// Package apperr holds the sentinel errors shared by stores and transports.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoSelection  = errors.New("no chapter selected")
	ErrMalformed    = errors.New("malformed record")
	ErrEmptyContent = errors.New("empty note content")
)
