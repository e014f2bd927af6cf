// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking engine to distinguish between different
// failure scenarios. For example, ErrForbidden indicates that the
// current user is not authorized to act on a resource owned by
// someone else, while ErrConflict signals that an operation cannot
// proceed due to existing dependent records (e.g. deleting a session
// that already has tickets).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a session that still has tickets. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrMovieNotFound indicates that a movie lookup yielded no rows.
var ErrMovieNotFound = errors.New("movie not found")

// ErrRoomNotFound indicates that a room lookup yielded no rows.
var ErrRoomNotFound = errors.New("room not found")

// ErrSessionNotFound indicates that a session lookup yielded no rows.
var ErrSessionNotFound = errors.New("session not found")

// ErrTicketNotFound indicates that a ticket lookup yielded no rows.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrUserNotFound indicates that a user lookup yielded no rows.
var ErrUserNotFound = errors.New("user not found")
