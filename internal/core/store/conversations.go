package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stellium/stellium/internal/core"
)

// CreateConversation opens a conversation between a member and a counterpart.
// Re-creating an existing pairing returns the existing conversation.
func (s *Store) CreateConversation(ctx context.Context, memberID, counterpartID string, isPersona bool) (*core.Conversation, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	memberID = strings.TrimSpace(memberID)
	counterpartID = strings.TrimSpace(counterpartID)
	if memberID == "" || counterpartID == "" {
		return nil, errors.New("member and counterpart ids are required")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // best-effort cleanup, no-op after commit

	conv, err := createConversationTx(ctx, tx, memberID, counterpartID, isPersona, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func createConversationTx(ctx context.Context, tx *sql.Tx, memberID, counterpartID string, isPersona bool, now time.Time) (*core.Conversation, error) {
	existing, err := conversationByPairTx(ctx, tx, memberID, counterpartID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	conv := &core.Conversation{
		ID:            uuid.NewString(),
		MemberID:      memberID,
		CounterpartID: counterpartID,
		IsPersona:     isPersona,
		CreatedAt:     now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, member_id, counterpart_id, is_persona, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, conv.ID, conv.MemberID, conv.CounterpartID, boolToInt(conv.IsPersona), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	return conv, nil
}

func conversationByPairTx(ctx context.Context, tx *sql.Tx, memberID, counterpartID string) (*core.Conversation, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, member_id, counterpart_id, is_persona, created_at
		FROM conversations
		WHERE (member_id = ? AND counterpart_id = ?) OR (member_id = ? AND counterpart_id = ?)
	`, memberID, counterpartID, counterpartID, memberID)

	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}
	return conv, nil
}

// GetConversation returns a conversation by id, or nil when absent.
func (s *Store) GetConversation(ctx context.Context, id string) (*core.Conversation, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, member_id, counterpart_id, is_persona, created_at
		FROM conversations
		WHERE id = ?
	`, strings.TrimSpace(id))

	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}
	return conv, nil
}

// ConversationExists reports whether the conversation is still present.
func (s *Store) ConversationExists(ctx context.Context, id string) (bool, error) {
	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		return false, err
	}
	return conv != nil, nil
}

// ListConversations returns every conversation the member participates in,
// newest first.
func (s *Store) ListConversations(ctx context.Context, memberID string) ([]core.Conversation, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, member_id, counterpart_id, is_persona, created_at
		FROM conversations
		WHERE member_id = ? OR counterpart_id = ?
		ORDER BY created_at DESC
	`, memberID, memberID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var conversations []core.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, *conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// DeleteConversation removes a conversation and its messages. Deleting an
// absent conversation is a no-op.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // best-effort cleanup, no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("delete conversation messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// AppendMessage adds a message to a conversation. The conversation must
// exist; callers that tolerate disappearance check first.
func (s *Store) AppendMessage(ctx context.Context, conversationID, authorID, body string) (*core.Message, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	conversationID = strings.TrimSpace(conversationID)
	authorID = strings.TrimSpace(authorID)
	body = strings.TrimSpace(body)
	if conversationID == "" || authorID == "" {
		return nil, errors.New("conversation and author ids are required")
	}
	if body == "" {
		return nil, errors.New("message body is required")
	}

	msg := &core.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		AuthorID:       authorID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, author_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.AuthorID, msg.Body, msg.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	return msg, nil
}

// ListMessages returns a conversation's messages oldest first.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]core.Message, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, conversation_id, author_id, body, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id
	`, strings.TrimSpace(conversationID))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var messages []core.Message
	for rows.Next() {
		var (
			msg       core.Message
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.AuthorID, &msg.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.CreatedAt = time.Unix(createdAt, 0).UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func scanConversation(row rowScanner) (*core.Conversation, error) {
	var (
		conv      core.Conversation
		isPersona int
		createdAt int64
	)
	if err := row.Scan(&conv.ID, &conv.MemberID, &conv.CounterpartID, &isPersona, &createdAt); err != nil {
		return nil, err
	}
	conv.IsPersona = isPersona == 1
	conv.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &conv, nil
}
