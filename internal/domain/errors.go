package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required answer, schema referencing a later field).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrCapacity is returned when a cart cannot be accepted for the chosen day
// because at least one capacity-limited product is blocked or sold out.
// Handlers should map this to HTTP 409 Conflict.
var ErrCapacity = errors.New("capacity unavailable")

// ErrInsufficientStock is returned when an order line asks for more units
// than a stock-tracked product has left. The whole order is rolled back.
// Handlers should map this to HTTP 409 Conflict.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrConflict is returned when a write collides with existing state,
// such as a duplicate event slug.
var ErrConflict = errors.New("conflict")
