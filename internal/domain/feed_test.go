package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	for _, s := range []string{"hot", "activity", "new", "day", "week", "month", "year"} {
		got, err := ParseSort(s)
		require.NoError(t, err, s)
		assert.Equal(t, Sort(s), got)
	}

	got, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortHot, got)

	got, err = ParseSort("NEW")
	require.NoError(t, err)
	assert.Equal(t, SortNew, got)

	_, err = ParseSort("top")
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, 1, ClampLimit(-3))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, MaxLimit, ClampLimit(50))
	assert.Equal(t, MaxLimit, ClampLimit(999))
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		segment string
		want    Scope
		name    string
	}{
		{"", Scope{Kind: ScopeAll}, "all"},
		{"gaming", Scope{Kind: ScopeCommunity, Target: "gaming"}, "gaming"},
		{"@alice", Scope{Kind: ScopeUser, Target: "alice"}, "@alice"},
	}
	for _, tt := range tests {
		got, err := ParseScope(tt.segment)
		require.NoError(t, err, tt.segment)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.name, got.Name())
	}

	_, err := ParseScope("@")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestUserFeedPagePostsDropsComments(t *testing.T) {
	page := &UserFeedPage{Items: []UserFeedItem{
		{Type: UserFeedItemPost, Post: &Post{ID: "1"}},
		{Type: UserFeedItemComment},
		{Type: UserFeedItemPost, Post: &Post{ID: "2"}},
		{Type: UserFeedItemComment},
	}}

	posts := page.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "1", posts[0].ID)
	assert.Equal(t, "2", posts[1].ID)
}

func TestUpstreamErrorMatchesNotFoundOnlyFor404(t *testing.T) {
	assert.ErrorIs(t, &UpstreamError{StatusCode: 404}, ErrNotFound)
	assert.NotErrorIs(t, &UpstreamError{StatusCode: 500}, ErrNotFound)
}
