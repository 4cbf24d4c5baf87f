package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stellium/stellium/internal/core"
)

// SwipeResult reports the outcome of recording a swipe. Conversation is set
// only when the swipe completed a mutual like.
type SwipeResult struct {
	Swipe        core.Swipe
	Matched      bool
	Conversation *core.Conversation
}

// RecordSwipe stores one swipe decision. A like that meets an existing like
// in the opposite direction creates the conversation inside the same
// transaction, so a match can never exist without its conversation.
func (s *Store) RecordSwipe(ctx context.Context, swiperID, targetID string, direction core.SwipeDirection) (*SwipeResult, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	swiperID = strings.TrimSpace(swiperID)
	targetID = strings.TrimSpace(targetID)
	if swiperID == "" || targetID == "" {
		return nil, errors.New("swiper and target ids are required")
	}
	if swiperID == targetID {
		return nil, errors.New("cannot swipe on yourself")
	}
	if direction != core.SwipeLike && direction != core.SwipePass {
		return nil, fmt.Errorf("unknown swipe direction: %s", direction)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("record swipe: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // best-effort cleanup, no-op after commit

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO swipes (swiper_id, target_id, direction, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(swiper_id, target_id) DO UPDATE SET
			direction = excluded.direction,
			created_at = excluded.created_at
	`, swiperID, targetID, string(direction), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("record swipe: %w", err)
	}

	result := &SwipeResult{Swipe: core.Swipe{
		SwiperID:  swiperID,
		TargetID:  targetID,
		Direction: direction,
		CreatedAt: now,
	}}

	if direction == core.SwipeLike {
		matched, conv, err := s.resolveMatch(ctx, tx, swiperID, targetID, now)
		if err != nil {
			return nil, err
		}
		result.Matched = matched
		result.Conversation = conv
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record swipe: %w", err)
	}

	return result, nil
}

func (s *Store) resolveMatch(ctx context.Context, tx *sql.Tx, swiperID, targetID string, now time.Time) (bool, *core.Conversation, error) {
	var reciprocal int
	row := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM swipes
		WHERE swiper_id = ? AND target_id = ? AND direction = ?
	`, targetID, swiperID, string(core.SwipeLike))
	if err := row.Scan(&reciprocal); err != nil {
		return false, nil, fmt.Errorf("check reciprocal like: %w", err)
	}
	if reciprocal == 0 {
		return false, nil, nil
	}

	var isPersona int
	row = tx.QueryRowContext(ctx, `SELECT is_persona FROM profiles WHERE id = ?`, targetID)
	if err := row.Scan(&isPersona); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, nil, fmt.Errorf("check target persona: %w", err)
	}

	conv, err := createConversationTx(ctx, tx, swiperID, targetID, isPersona == 1, now)
	if err != nil {
		return false, nil, err
	}
	return true, conv, nil
}
