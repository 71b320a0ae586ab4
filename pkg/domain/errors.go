package domain

import "errors"

// ErrOutOfTurn is returned when input arrives while the machine is not
// awaiting it: during auto-typing, during the settle window, or after the
// interview is done.
var ErrOutOfTurn = errors.New("input out of turn")

// ErrEmptyAnswer is returned when a commit carries nothing but whitespace.
// The draft is left untouched.
var ErrEmptyAnswer = errors.New("empty answer")

// ErrNotReady is returned when launch is invoked before the gate is enabled.
var ErrNotReady = errors.New("launch not ready")

// ErrAlreadyRunning is returned when launch is invoked a second time.
var ErrAlreadyRunning = errors.New("launch already running")

// ErrStaleStep is returned when a scheduled event fires against a step that
// has already been retired. Stale fires never mutate state.
var ErrStaleStep = errors.New("stale step event")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrScriptInvalid is returned when a script cannot drive an interview.
var ErrScriptInvalid = errors.New("invalid script")

// ErrSessionClosed is returned when an operation reaches a closed session.
var ErrSessionClosed = errors.New("session closed")
