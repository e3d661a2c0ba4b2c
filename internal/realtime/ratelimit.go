package realtime

import "time"

// Typing indicators are cheap to send and expensive to fan out, so each
// connection gets a per-minute token budget.
const maxTypingEventsPerMinute = 60

// typingLimiter is a token bucket refilled once a minute. It is only
// touched from the hub loop, so it carries no lock.
type typingLimiter struct {
	tokens     int
	lastRefill time.Time
}

func newTypingLimiter(now time.Time) *typingLimiter {
	return &typingLimiter{
		tokens:     maxTypingEventsPerMinute,
		lastRefill: now,
	}
}

func (l *typingLimiter) allow(now time.Time) bool {
	if now.Sub(l.lastRefill) >= time.Minute {
		l.tokens = maxTypingEventsPerMinute
		l.lastRefill = now
	}
	if l.tokens > 0 {
		l.tokens--
		return true
	}
	return false
}
