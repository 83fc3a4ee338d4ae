package session

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ghostcanvas/internal/chat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndListSessions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx)
	require.NoError(t, err)
	second, err := store.Create(ctx)
	require.NoError(t, err)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].ID) // newest first
	assert.Equal(t, first, sessions[1].ID)
	assert.Equal(t, DefaultTitle, sessions[0].Title)
}

func TestAppendTurnSetsTitleFromFirstUserMessage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx)
	require.NoError(t, err)

	long := strings.Repeat("x", 40)
	require.NoError(t, store.AppendTurn(ctx, id, chat.Turn{Role: chat.RoleUser, Text: long}, nil))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, strings.Repeat("x", 30)+"..", sessions[0].Title)

	// later user messages do not rename the session
	require.NoError(t, store.AppendTurn(ctx, id, chat.Turn{Role: chat.RoleUser, Text: "another"}, nil))
	sessions, err = store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 30)+"..", sessions[0].Title)
}

func TestShortTitleNotTruncated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, id, chat.Turn{Role: chat.RoleUser, Text: "hi there"}, nil))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hi there", sessions[0].Title)
}

func TestModelTurnDoesNotTitle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, id, chat.Turn{Role: chat.RoleModel, Text: "greetings"}, nil))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, sessions[0].Title)
}

func TestMessagesRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx)
	require.NoError(t, err)

	userTurn := chat.Turn{
		Role:   chat.RoleUser,
		Text:   "what is in this screenshot?",
		Images: []string{"/tmp/captures/q_120001.jpg"},
	}
	require.NoError(t, store.AppendTurn(ctx, id, userTurn, []string{"notes.txt", "spec.pdf"}))
	require.NoError(t, store.AppendTurn(ctx, id, chat.Turn{Role: chat.RoleModel, Text: "a window"}, nil))

	msgs, err := store.Messages(ctx, id)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "what is in this screenshot?", msgs[0].Text)
	assert.Equal(t, "/tmp/captures/q_120001.jpg", msgs[0].ImagePath)
	assert.Equal(t, []string{"notes.txt", "spec.pdf"}, msgs[0].FilePaths)

	assert.Equal(t, "model", msgs[1].Role)
	assert.Empty(t, msgs[1].ImagePath)
	assert.Nil(t, msgs[1].FilePaths)
}

func TestHistoryReconstruction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, id,
		chat.Turn{Role: chat.RoleUser, Text: "q", Images: []string{"/tmp/a.png"}}, nil))
	require.NoError(t, store.AppendTurn(ctx, id, chat.Turn{Role: chat.RoleModel, Text: "a"}, nil))

	h, err := store.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, chat.RoleUser, h[0].Role)
	assert.Equal(t, []string{"/tmp/a.png"}, h[0].Images)
	assert.Equal(t, chat.RoleModel, h[1].Role)
	assert.Nil(t, h[1].Images)
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, id, chat.Turn{Role: chat.RoleUser, Text: "q"}, nil))

	keep, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, keep, chat.Turn{Role: chat.RoleUser, Text: "other"}, nil))

	require.NoError(t, store.Delete(ctx, id))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, keep, sessions[0].ID)

	msgs, err := store.Messages(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
