package storage

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("verification record not found")

// ErrDuplicateID is returned when a record with the same ID already exists.
var ErrDuplicateID = errors.New("verification record already exists")
