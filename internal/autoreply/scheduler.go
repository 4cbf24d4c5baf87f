// Package autoreply schedules delayed persona responses. A persona reply is
// best-effort: it fires after a randomized human-feeling delay, re-checks
// that the conversation still exists, and gives up quietly on any failure.
package autoreply

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/stellium/stellium/internal/core"
)

const (
	// DefaultMinDelay and DefaultJitter place the fire time uniformly in
	// [MinDelay, MinDelay+Jitter), so replies land between 1s and 2s after
	// the triggering message by default.
	DefaultMinDelay = 1000 * time.Millisecond
	DefaultJitter   = 1000 * time.Millisecond
)

// cannedReplies is the persona reply pool. Selection is deterministic per
// persona and conversation so repeated test runs see stable output.
var cannedReplies = []string{
	"Interesting! Tell me more about that.",
	"Haha, I was just thinking the same thing.",
	"That's so true. What made you think of it?",
	"I love that. Mercury must be direct for once.",
	"You have great energy, I can tell already.",
	"Okay, now I'm curious. Go on.",
	"Same! It's like we're on the same wavelength.",
	"That sounds amazing. I'd love to hear the full story.",
}

// ConversationStore is the slice of the data layer the scheduler needs.
type ConversationStore interface {
	ConversationExists(ctx context.Context, conversationID string) (bool, error)
	AppendMessage(ctx context.Context, conversationID, authorID, body string) (*core.Message, error)
}

// Scheduler queues one deferred reply per triggering message. It owns its
// pending timers and cancels them all on Stop.
type Scheduler struct {
	store    ConversationStore
	logger   *logging.Logger
	minDelay time.Duration
	jitter   time.Duration

	mu      sync.Mutex
	rng     *rand.Rand
	timers  map[int]*time.Timer
	nextID  int
	stopped bool
}

// NewScheduler creates a scheduler. Zero or negative delay values fall back
// to the defaults.
func NewScheduler(store ConversationStore, logger *logging.Logger, minDelay, jitter time.Duration) *Scheduler {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if jitter <= 0 {
		jitter = DefaultJitter
	}
	return &Scheduler{
		store:    store,
		logger:   logger,
		minDelay: minDelay,
		jitter:   jitter,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		timers:   make(map[int]*time.Timer),
	}
}

// Schedule queues a reply from personaID into conversationID and returns the
// chosen delay. The caller's request never waits on the reply; all failures
// after this point are logged and swallowed.
func (s *Scheduler) Schedule(conversationID, personaID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return 0
	}

	delay := s.minDelay + time.Duration(s.rng.Int63n(int64(s.jitter)))
	id := s.nextID
	s.nextID++

	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.fire(conversationID, personaID)
	})

	return delay
}

// Stop cancels every pending reply. Replies already firing run to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Pending reports how many replies are queued.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// fire appends the canned reply if the conversation still exists. The
// conversation may have been deleted between trigger and fire; that is a
// quiet no-op, not an error.
func (s *Scheduler) fire(conversationID, personaID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := s.store.ConversationExists(ctx, conversationID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Auto-reply existence check failed",
				zap.String("conversation_id", conversationID),
				zap.Error(err))
		}
		return
	}
	if !exists {
		if s.logger != nil {
			s.logger.Debug("Auto-reply skipped, conversation gone",
				zap.String("conversation_id", conversationID))
		}
		return
	}

	body := ReplyFor(personaID, conversationID)
	if _, err := s.store.AppendMessage(ctx, conversationID, personaID, body); err != nil {
		if s.logger != nil {
			s.logger.Warn("Auto-reply append failed",
				zap.String("conversation_id", conversationID),
				zap.String("persona_id", personaID),
				zap.Error(err))
		}
	}
}

// ReplyFor picks the canned reply for a persona in a conversation. The pick
// is a pure function of its inputs.
func ReplyFor(personaID, conversationID string) string {
	h := fnv.New32a()
	h.Write([]byte(personaID))  // nolint:errcheck // hash.Hash never errors
	h.Write([]byte(conversationID)) // nolint:errcheck // hash.Hash never errors
	return cannedReplies[h.Sum32()%uint32(len(cannedReplies))]
}
