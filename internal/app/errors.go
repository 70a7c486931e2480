package app

import "errors"

var (
	ErrNotFound = errors.New("object not found")
	ErrInvalid  = errors.New("invalid operation")
)
