package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	userScopePrefix = "@"
	allScopeName    = "all"
)

// Sort is an upstream ordering key for post listings.
type Sort string

const (
	SortHot      Sort = "hot"
	SortActivity Sort = "activity"
	SortNew      Sort = "new"
	SortDay      Sort = "day"
	SortWeek     Sort = "week"
	SortMonth    Sort = "month"
	SortYear     Sort = "year"
)

var validSorts = map[Sort]struct{}{
	SortHot:      {},
	SortActivity: {},
	SortNew:      {},
	SortDay:      {},
	SortWeek:     {},
	SortMonth:    {},
	SortYear:     {},
}

// ParseSort converts a query value into a Sort. An empty value means hot.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return SortHot, nil
	}
	sort := Sort(strings.ToLower(s))
	if _, ok := validSorts[sort]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
	return sort, nil
}

// ClampLimit bounds a requested item count to [1, MaxLimit]. Zero means the
// caller did not ask for a specific count.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// ScopeKind selects which posts populate a feed.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeCommunity
	ScopeUser
)

// Scope is a feed selector: every post, one community, or one user.
type Scope struct {
	Kind ScopeKind

	// Target is the community name or username. Empty for ScopeAll.
	Target string
}

// ParseScope interprets a path segment. "" selects all posts, "@name" a
// user and anything else a community.
func ParseScope(segment string) (Scope, error) {
	if segment == "" {
		return Scope{Kind: ScopeAll}, nil
	}
	if username, ok := strings.CutPrefix(segment, userScopePrefix); ok {
		if username == "" {
			return Scope{}, fmt.Errorf("%w: missing username", ErrInvalidScope)
		}
		return Scope{Kind: ScopeUser, Target: username}, nil
	}
	return Scope{Kind: ScopeCommunity, Target: segment}, nil
}

// Name is the scope as it appears in URLs and feed metadata.
func (s Scope) Name() string {
	switch s.Kind {
	case ScopeCommunity:
		return s.Target
	case ScopeUser:
		return userScopePrefix + s.Target
	default:
		return allScopeName
	}
}

// FeedRequest describes one feed to assemble.
type FeedRequest struct {
	Scope Scope
	Sort  Sort
	Limit int
}

// FeedPage is one page of posts. Next is the upstream pagination cursor.
type FeedPage struct {
	Posts []Post
	Next  string
}

// UserFeedItemType tags an entry of a user's activity feed.
type UserFeedItemType string

const (
	UserFeedItemPost    UserFeedItemType = "post"
	UserFeedItemComment UserFeedItemType = "comment"
)

// UserFeedItem is either a post or a comment from a user's feed. Post is nil
// for comment entries.
type UserFeedItem struct {
	Type UserFeedItemType
	Post *Post
}

// UserFeedPage is one page of a user's feed.
type UserFeedPage struct {
	Items []UserFeedItem
	Next  string
}

// Posts returns the post entries of the page, dropping comments.
func (p *UserFeedPage) Posts() []Post {
	posts := make([]Post, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Type != UserFeedItemPost || item.Post == nil {
			continue
		}
		posts = append(posts, *item.Post)
	}
	return posts
}

func (k ScopeKind) String() string {
	switch k {
	case ScopeCommunity:
		return "community"
	case ScopeUser:
		return "user"
	default:
		return "all"
	}
}
