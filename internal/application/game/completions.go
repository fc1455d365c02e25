package game

import (
	"errors"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/ws"
)

// completeTopic applies a topic-generation result. It re-enters through the
// room lock and is dropped when the room or round moved on meanwhile.
func (r *Relay) completeTopic(room *domain.Room, round int, candidate domain.TopicCandidate, callErr error) {
	room.Lock()

	if callErr != nil {
		if err := room.FailTopic(round); err != nil {
			room.Unlock()
			r.discard(room.ID(), round, err)
			return
		}
		broadcastError(room, ws.CodeTopicFailed, errTopicFailed.Error())
		room.Unlock()

		r.metrics.EventRejected(ws.CodeTopicFailed)
		r.logger.Error(logging.Game, logging.GenerateTopic, "topic generation failed", map[logging.ExtraKey]any{
			logging.RoomID:       room.ID(),
			logging.Round:        round,
			logging.ErrorMessage: callErr.Error(),
		})
		return
	}

	if err := room.ApplyTopic(round, candidate); err != nil {
		room.Unlock()
		r.discard(room.ID(), round, err)
		return
	}

	topic, _ := room.Topic()
	send(room.Drawer(), room.ID(), ws.TopicForDrawer, ws.TopicForDrawerPayload{
		Topic:      topic.Topic,
		Hint:       topic.Hint,
		Difficulty: topic.Difficulty,
		Round:      round,
	})
	send(room.Guesser(), room.ID(), ws.RoundStartedForGuesser, ws.RoundStartedPayload{Round: round})
	state := room.Snapshot()
	broadcast(room, ws.RoomState, state)
	room.Unlock()

	evt := domain.NewRoomEvent(domain.EventRoundStarted, room.ID())
	evt.Round = round
	evt.Difficulty = topic.Difficulty
	evt.State = &state
	r.publish(evt)
}

// completeJudgment applies a judge result and reveals it to the whole room.
func (r *Relay) completeJudgment(
	room *domain.Room,
	round int,
	topic domain.TopicCandidate,
	guess string,
	drawingScore float64,
	judgment domain.Judgment,
	callErr error,
) {
	room.Lock()

	if callErr != nil {
		if err := room.FailJudging(round); err != nil {
			room.Unlock()
			r.discard(room.ID(), round, err)
			return
		}
		broadcastError(room, ws.CodeJudgmentFailed, errJudgmentFailed.Error())
		room.Unlock()

		r.metrics.EventRejected(ws.CodeJudgmentFailed)
		r.logger.Error(logging.Game, logging.JudgeGuess, "guess judgment failed", map[logging.ExtraKey]any{
			logging.RoomID:       room.ID(),
			logging.Round:        round,
			logging.ErrorMessage: callErr.Error(),
		})
		return
	}

	if err := room.ResolveJudging(round); err != nil {
		room.Unlock()
		r.discard(room.ID(), round, err)
		return
	}

	result := domain.NewRoundResult(round, topic, guess, judgment, drawingScore)
	broadcast(room, ws.RoundResult, result)
	room.Unlock()

	r.metrics.RoundResolved(result.Correct)
	r.logger.Debug(logging.Game, logging.SubmitGuess, "round resolved", map[logging.ExtraKey]any{
		logging.RoomID: room.ID(),
		logging.Round:  round,
	})

	evt := domain.NewRoomEvent(domain.EventRoundResolved, room.ID())
	evt.Round = round
	evt.Result = &result
	r.publish(evt)
}

func (r *Relay) discard(roomID string, round int, err error) {
	msg := "discarding stale completion"
	if errors.Is(err, domain.ErrRoomRemoved) {
		msg = "discarding completion for removed room"
	}
	r.logger.Debug(logging.Game, logging.Expiry, msg, map[logging.ExtraKey]any{
		logging.RoomID: roomID,
		logging.Round:  round,
	})
}

// displayName sanitizes a requested name and masks profanity with the
// role's placeholder.
func (r *Relay) displayName(raw string, role domain.Role) string {
	name := domain.SanitizeName(raw, role, r.opts.MaxNameLength)
	if r.filter != nil && r.filter.ContainsProfanity(name) {
		return role.DefaultName()
	}
	return name
}
