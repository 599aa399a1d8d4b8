package config

import "errors"

// ErrNotFound is returned when a requested cookie or item does not exist in
// the store.
var ErrNotFound = errors.New("not found")

// ErrInvalidDSN is returned by OpenStore for a DSN it cannot interpret.
var ErrInvalidDSN = errors.New("invalid state store DSN")
