package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postsCall struct {
	sort      Sort
	limit     int
	community string
}

type fakeSource struct {
	page      *FeedPage
	userPage  *UserFeedPage
	err       error
	postCalls []postsCall
	userCalls []string
	userLimit int
}

func (f *fakeSource) GetPosts(_ context.Context, sort Sort, limit int, communityName string) (*FeedPage, error) {
	f.postCalls = append(f.postCalls, postsCall{sort: sort, limit: limit, community: communityName})
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeSource) GetUserFeed(_ context.Context, username string, limit int) (*UserFeedPage, error) {
	f.userCalls = append(f.userCalls, username)
	f.userLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.userPage, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFeedAllPosts(t *testing.T) {
	src := &fakeSource{page: &FeedPage{Posts: []Post{{ID: "1"}, {ID: "2"}}, Next: "cursor"}}
	svc := NewFeedService(src, discardLogger())

	posts, err := svc.Feed(context.Background(), FeedRequest{Scope: Scope{Kind: ScopeAll}})
	require.NoError(t, err)

	assert.Len(t, posts, 2)
	require.Len(t, src.postCalls, 1)
	assert.Equal(t, postsCall{sort: SortHot, limit: DefaultLimit, community: ""}, src.postCalls[0])
	assert.Empty(t, src.userCalls)
}

func TestFeedCommunityClampsLimit(t *testing.T) {
	src := &fakeSource{page: &FeedPage{}}
	svc := NewFeedService(src, discardLogger())

	_, err := svc.Feed(context.Background(), FeedRequest{
		Scope: Scope{Kind: ScopeCommunity, Target: "gaming"},
		Sort:  SortWeek,
		Limit: 999,
	})
	require.NoError(t, err)

	require.Len(t, src.postCalls, 1)
	assert.Equal(t, postsCall{sort: SortWeek, limit: MaxLimit, community: "gaming"}, src.postCalls[0])
}

func TestFeedUserKeepsOnlyPosts(t *testing.T) {
	src := &fakeSource{userPage: &UserFeedPage{Items: []UserFeedItem{
		{Type: UserFeedItemComment},
		{Type: UserFeedItemPost, Post: &Post{ID: "p1"}},
		{Type: UserFeedItemComment},
	}}}
	svc := NewFeedService(src, discardLogger())

	posts, err := svc.Feed(context.Background(), FeedRequest{Scope: Scope{Kind: ScopeUser, Target: "alice"}, Limit: 5})
	require.NoError(t, err)

	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, []string{"alice"}, src.userCalls)
	assert.Equal(t, 5, src.userLimit)
	assert.Empty(t, src.postCalls)
}

func TestFeedPropagatesSourceErrors(t *testing.T) {
	upstream := &UpstreamError{StatusCode: 404, Body: []byte(`{"message":"not found"}`)}
	src := &fakeSource{err: upstream}
	svc := NewFeedService(src, discardLogger())

	_, err := svc.Feed(context.Background(), FeedRequest{Scope: Scope{Kind: ScopeCommunity, Target: "nope"}})

	var got *UpstreamError
	require.True(t, errors.As(err, &got))
	assert.Same(t, upstream, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeedRejectsUnknownScopeKind(t *testing.T) {
	svc := NewFeedService(&fakeSource{}, discardLogger())

	_, err := svc.Feed(context.Background(), FeedRequest{Scope: Scope{Kind: ScopeKind(42)}})
	assert.ErrorIs(t, err, ErrInvalidScope)
}
