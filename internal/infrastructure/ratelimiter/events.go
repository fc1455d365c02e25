package ratelimiter

import (
	"time"

	"golang.org/x/time/rate"
)

// EventLimiter throttles the inbound events of a single connection.
// Rejections are reported to the client at most once per noticeEvery.
type EventLimiter struct {
	events *rate.Limiter
	notice *rate.Limiter
}

const noticeEvery = time.Second

func NewEventLimiter(perSecond float64, burst int) *EventLimiter {
	if burst <= 0 {
		burst = int(perSecond)
	}
	return &EventLimiter{
		events: rate.NewLimiter(rate.Limit(perSecond), burst),
		notice: rate.NewLimiter(rate.Every(noticeEvery), 1),
	}
}

// Allow reports whether the event may proceed and, when it may not,
// whether the client should be told about it.
func (l *EventLimiter) Allow() (allowed bool, notify bool) {
	return l.AllowAt(time.Now())
}

func (l *EventLimiter) AllowAt(now time.Time) (allowed bool, notify bool) {
	if l.events.AllowN(now, 1) {
		return true, false
	}
	return false, l.notice.AllowN(now, 1)
}
