package domain

import "context"

// PostSource is the upstream the feeds are built from.
type PostSource interface {
	// GetPosts lists posts ordered by sort. A non-empty communityName
	// restricts the listing to that community.
	GetPosts(ctx context.Context, sort Sort, limit int, communityName string) (*FeedPage, error)

	// GetUserFeed lists the posts and comments of a user, newest first.
	GetUserFeed(ctx context.Context, username string, limit int) (*UserFeedPage, error)
}
