package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// FeedService resolves a feed request to the upstream call that serves it.
type FeedService struct {
	source PostSource
	logger *slog.Logger
}

// NewFeedService creates a FeedService reading from source.
func NewFeedService(source PostSource, logger *slog.Logger) *FeedService {
	return &FeedService{
		source: source,
		logger: logger,
	}
}

// Feed returns the first page of posts for the request. User feeds are
// reduced to the user's posts; comments are dropped. Pagination cursors are
// not followed.
func (s *FeedService) Feed(ctx context.Context, req FeedRequest) ([]Post, error) {
	limit := ClampLimit(req.Limit)
	sort := req.Sort
	if sort == "" {
		sort = SortHot
	}

	switch req.Scope.Kind {
	case ScopeUser:
		page, err := s.source.GetUserFeed(ctx, req.Scope.Target, limit)
		if err != nil {
			return nil, fmt.Errorf("get feed of user %s: %w", req.Scope.Target, err)
		}
		posts := page.Posts()
		s.logger.Debug("user feed fetched",
			"username", req.Scope.Target,
			"items", len(page.Items),
			"posts", len(posts),
			"next", page.Next,
		)
		return posts, nil

	case ScopeCommunity, ScopeAll:
		page, err := s.source.GetPosts(ctx, sort, limit, req.Scope.Target)
		if err != nil {
			return nil, fmt.Errorf("get posts for %s: %w", req.Scope.Name(), err)
		}
		s.logger.Debug("posts fetched",
			"scope", req.Scope.Name(),
			"sort", sort,
			"limit", limit,
			"posts", len(page.Posts),
			"next", page.Next,
		)
		return page.Posts, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidScope, req.Scope.Kind)
	}
}
