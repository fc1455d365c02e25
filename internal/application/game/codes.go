package game

import (
	"errors"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/ws"
)

var (
	errNotJoined      = errors.New("join a room first")
	errUnknownEvent   = errors.New("unknown event type")
	errMalformedFrame = errors.New("malformed message")
	errRateLimited    = errors.New("too many events, slow down")
	errTopicFailed    = errors.New("failed to generate a topic, start the round again")
	errJudgmentFailed = errors.New("failed to judge the guess, submit it again")
)

func codeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRole):
		return ws.CodeInvalidRole
	case errors.Is(err, domain.ErrRoomIncomplete):
		return ws.CodeRoomIncomplete
	case errors.Is(err, domain.ErrNotDrawer):
		return ws.CodeNotDrawer
	case errors.Is(err, domain.ErrNotGuesser):
		return ws.CodeNotGuesser
	case errors.Is(err, domain.ErrNoActiveTopic):
		return ws.CodeNoActiveTopic
	case errors.Is(err, domain.ErrEmptyGuess):
		return ws.CodeEmptyGuess
	case errors.Is(err, domain.ErrDrawingNotDone):
		return ws.CodeDrawingNotDone
	case errors.Is(err, domain.ErrRoundPending):
		return ws.CodeRoundPending
	case errors.Is(err, domain.ErrJudgmentPending):
		return ws.CodeJudgmentPending
	case errors.Is(err, domain.ErrRoomRemoved), errors.Is(err, domain.ErrRoomNotFound):
		return ws.CodeRoomExpired
	case errors.Is(err, domain.ErrRegistryFull):
		return ws.CodeServerFull
	case errors.Is(err, errNotJoined):
		return ws.CodeNotJoined
	case errors.Is(err, errRateLimited):
		return ws.CodeRateLimited
	case errors.Is(err, errTopicFailed):
		return ws.CodeTopicFailed
	case errors.Is(err, errJudgmentFailed):
		return ws.CodeJudgmentFailed
	default:
		return ws.CodeInvalidInput
	}
}

// roomWide reports whether a rejection concerns everyone in the room
// rather than only the requester.
func roomWide(err error) bool {
	return errors.Is(err, domain.ErrRoomIncomplete)
}
