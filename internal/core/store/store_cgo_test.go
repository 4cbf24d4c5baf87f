//go:build cgo

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stellium/stellium/internal/config"
	"github.com/stellium/stellium/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	s, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	}

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, "libsql", s.Driver())
	require.NoError(t, s.CheckHealth(ctx))
	require.NoError(t, s.Close())
}

func TestProfileLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateProfile(ctx, core.Profile{
		DisplayName: "Luna",
		BirthDate:   "1995-07-14",
		SunSign:     "cancer",
		Bio:         "moon child",
		ExtraData:   map[string]any{"rising": "libra"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := s.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "Luna", fetched.DisplayName)
	require.Equal(t, "cancer", fetched.SunSign)
	require.Equal(t, "libra", fetched.ExtraData["rising"])

	fetched.Bio = "updated bio"
	updated, err := s.UpdateProfile(ctx, *fetched)
	require.NoError(t, err)
	require.Equal(t, "updated bio", updated.Bio)

	missing, err := s.GetProfile(ctx, "no-such-id")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestListCandidatesExcludesSwiped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	me, err := s.CreateProfile(ctx, core.Profile{DisplayName: "Me"})
	require.NoError(t, err)
	other, err := s.CreateProfile(ctx, core.Profile{DisplayName: "Other"})
	require.NoError(t, err)
	persona, err := s.CreateProfile(ctx, core.Profile{DisplayName: "Astra", IsPersona: true})
	require.NoError(t, err)

	candidates, err := s.ListCandidates(ctx, me.ID, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	_, err = s.RecordSwipe(ctx, me.ID, other.ID, core.SwipePass)
	require.NoError(t, err)

	candidates, err = s.ListCandidates(ctx, me.ID, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, persona.ID, candidates[0].ID)
}

func TestMutualLikeCreatesConversation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateProfile(ctx, core.Profile{DisplayName: "Alice"})
	require.NoError(t, err)
	bob, err := s.CreateProfile(ctx, core.Profile{DisplayName: "Bob"})
	require.NoError(t, err)

	first, err := s.RecordSwipe(ctx, alice.ID, bob.ID, core.SwipeLike)
	require.NoError(t, err)
	require.False(t, first.Matched)
	require.Nil(t, first.Conversation)

	second, err := s.RecordSwipe(ctx, bob.ID, alice.ID, core.SwipeLike)
	require.NoError(t, err)
	require.True(t, second.Matched)
	require.NotNil(t, second.Conversation)
	require.False(t, second.Conversation.IsPersona)

	exists, err := s.ConversationExists(ctx, second.Conversation.ID)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestMutualLikeWithPersonaFlagsConversation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	member, err := s.CreateProfile(ctx, core.Profile{DisplayName: "Member"})
	require.NoError(t, err)
	persona, err := s.CreateProfile(ctx, core.Profile{DisplayName: "Astra", IsPersona: true})
	require.NoError(t, err)

	_, err = s.RecordSwipe(ctx, persona.ID, member.ID, core.SwipeLike)
	require.NoError(t, err)

	result, err := s.RecordSwipe(ctx, member.ID, persona.ID, core.SwipeLike)
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.True(t, result.Conversation.IsPersona)
}

func TestCreateConversationIsIdempotentPerPair(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.CreateConversation(ctx, "m1", "p1", true)
	require.NoError(t, err)
	second, err := s.CreateConversation(ctx, "p1", "m1", true)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestMessagesRoundTripAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "m1", "p1", false)
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, conv.ID, "m1", "hey there")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conv.ID, "p1", "hello!")
	require.NoError(t, err)

	messages, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "hey there", messages[0].Body)

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))

	exists, err := s.ConversationExists(ctx, conv.ID)
	require.NoError(t, err)
	require.False(t, exists)

	messages, err = s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestAppendMessageValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.AppendMessage(ctx, "conv", "author", "   ")
	require.Error(t, err)

	_, err = s.AppendMessage(ctx, "", "author", "body")
	require.Error(t, err)
}
