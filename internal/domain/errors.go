package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidRole     = errors.New("role must be drawer or guesser")
	ErrRoomIncomplete  = errors.New("both drawer and guesser must be present")
	ErrNotDrawer       = errors.New("only the drawer can do that")
	ErrNotGuesser      = errors.New("only the guesser can do that")
	ErrNoActiveTopic   = errors.New("no active topic")
	ErrEmptyGuess      = errors.New("guess is empty")
	ErrDrawingNotDone  = errors.New("drawing is not finished yet")
	ErrRoundPending    = errors.New("a topic is already being generated")
	ErrJudgmentPending = errors.New("a guess is already being judged")
	ErrRoomRemoved     = errors.New("room has expired")
	ErrRegistryFull    = errors.New("room registry is full")
	ErrRoomNotFound    = errors.New("room not found")

	// ErrStaleCompletion is returned when an async result no longer
	// matches the room's round or phase.
	ErrStaleCompletion = errors.New("stale completion")
)
