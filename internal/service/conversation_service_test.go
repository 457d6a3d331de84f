package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mindmirror-go/internal/model"
	"mindmirror-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Get(context.Context, string) (model.History, error) {
	return nil, errors.New("redis: connection refused")
}
func (failingRepo) Put(context.Context, string, model.History) error {
	return errors.New("redis: connection refused")
}
func (failingRepo) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func newConv() ConversationService {
	return NewConversationService(repository.NewMemorySessionRepository(time.Hour, 0), testSystemPrompt, 10)
}

func TestBuildPrompt_EmptyHistory(t *testing.T) {
	prompt, err := newConv().BuildPrompt(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, prompt, 1)
	assert.Equal(t, model.RoleSystem, prompt[0].Role)
	assert.Equal(t, testSystemPrompt, prompt[0].Content)
}

func TestBuildPrompt_SlidingWindow(t *testing.T) {
	tests := []struct {
		turns     int
		wantLen   int
		wantFirst string
	}{
		{1, 2, "t0"},
		{9, 10, "t0"},
		{10, 11, "t0"},
		{11, 11, "t1"},
		{35, 11, "t25"},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d turns", tc.turns), func(t *testing.T) {
			conv := newConv()
			ctx := context.Background()
			for i := 0; i < tc.turns; i++ {
				require.NoError(t, conv.AppendUserTurn(ctx, "s1", fmt.Sprintf("t%d", i)))
			}

			prompt, err := conv.BuildPrompt(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, prompt, tc.wantLen)
			assert.Equal(t, model.RoleSystem, prompt[0].Role)
			assert.Equal(t, tc.wantFirst, prompt[1].Content)
			assert.Equal(t, fmt.Sprintf("t%d", tc.turns-1), prompt[len(prompt)-1].Content)
		})
	}
}

func TestAppendUserTurn_RejectsBlank(t *testing.T) {
	conv := newConv()
	assert.ErrorIs(t, conv.AppendUserTurn(context.Background(), "s1", " \t "), ErrEmptyMessage)
}

func TestAppendTurns_AnySequenceAccepted(t *testing.T) {
	conv := newConv()
	ctx := context.Background()

	require.NoError(t, conv.AppendAssistantTurn(ctx, "s1", "a"))
	require.NoError(t, conv.AppendAssistantTurn(ctx, "s1", "b"))
	require.NoError(t, conv.AppendUserTurn(ctx, "s1", "c"))

	history, err := conv.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{model.RoleAssistant, model.RoleAssistant, model.RoleUser},
		[]string{history[0].Role, history[1].Role, history[2].Role})
	assert.False(t, history[0].Timestamp.IsZero())
}

func TestReset_Idempotent(t *testing.T) {
	conv := newConv()
	ctx := context.Background()
	require.NoError(t, conv.AppendUserTurn(ctx, "s1", "hello"))

	require.NoError(t, conv.Reset(ctx, "s1"))
	first, err := conv.History(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, conv.Reset(ctx, "s1"))
	second, err := conv.History(ctx, "s1")
	require.NoError(t, err)

	assert.Empty(t, first)
	assert.Equal(t, first, second)
}

func TestConversationService_StoreErrorsAreTagged(t *testing.T) {
	conv := NewConversationService(failingRepo{}, testSystemPrompt, 10)
	ctx := context.Background()

	assert.ErrorIs(t, conv.AppendUserTurn(ctx, "s1", "hi"), ErrSessionStore)
	assert.ErrorIs(t, conv.AppendAssistantTurn(ctx, "s1", "hi"), ErrSessionStore)
	assert.ErrorIs(t, conv.Reset(ctx, "s1"), ErrSessionStore)
	_, err := conv.BuildPrompt(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionStore)
	_, err = conv.History(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionStore)
}

func TestArticleService(t *testing.T) {
	svc, err := NewArticleService(model.DefaultArticles)
	require.NoError(t, err)

	list := svc.List()
	assert.Len(t, list, 18)
	for _, a := range list {
		assert.NotEmpty(t, a.Name)
		assert.NotEmpty(t, a.Link)
	}

	list[0].Name = "mutated"
	assert.NotEqual(t, "mutated", svc.List()[0].Name)
}

func TestArticleService_RejectsInvalid(t *testing.T) {
	_, err := NewArticleService([]model.Article{{Name: "", Link: "https://x.org"}})
	assert.Error(t, err)
	_, err = NewArticleService([]model.Article{{Name: "x", Link: "not a url"}})
	assert.Error(t, err)
}
