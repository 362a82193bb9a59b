package core

import "errors"

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrEmptyComment = errors.New("comment is empty")
	ErrInvalidCount = errors.New("invalid count")
	ErrKeyNotFound  = errors.New("key not found")
	ErrNotFound     = errors.New("not found")
)
