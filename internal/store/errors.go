package store

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateStat  = errors.New("stat name already exists for user")
	ErrDuplicateEntry = errors.New("journal entry already exists for date")
	ErrAlreadyFinal   = errors.New("journal entry is already finalized")
	ErrNotPending     = errors.New("task is not pending")
)
