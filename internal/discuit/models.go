package discuit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackmichael/discuit-rss/internal/domain"
)

// apiPost is the JSON shape of a Discuit post. Only the fields the feed uses
// are decoded.
type apiPost struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	PublicID      string    `json:"publicId"`
	CommunityID   string    `json:"communityId"`
	CommunityName string    `json:"communityName"`
	Title         string    `json:"title"`
	Body          *string   `json:"body"`
	Image         *apiImage `json:"image"`
	Link          *apiLink  `json:"link"`
	Upvotes       int       `json:"upvotes"`
	Downvotes     int       `json:"downvotes"`
	NoComments    int       `json:"noComments"`
	CreatedAt     time.Time `json:"createdAt"`
	Author        *apiUser  `json:"author"`
}

type apiImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type apiLink struct {
	URL      string    `json:"url"`
	Hostname string    `json:"hostname"`
	Image    *apiImage `json:"image"`
}

type apiUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type apiCommunity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type postsResponse struct {
	Posts []apiPost `json:"posts"`
	Next  *string   `json:"next"`
}

type userFeedResponse struct {
	Items []userFeedItem `json:"items"`
	Next  *string        `json:"next"`
}

// userFeedItem is one entry of a user feed. The item is decoded as a post
// only when the entry is tagged "post"; comments stay raw.
type userFeedItem struct {
	Type string
	Post *apiPost
}

func (i *userFeedItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type string          `json:"type"`
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal feed item: %w", err)
	}

	*i = userFeedItem{Type: raw.Type}
	if raw.Type == string(domain.UserFeedItemPost) && len(raw.Item) > 0 {
		var post apiPost
		if err := json.Unmarshal(raw.Item, &post); err != nil {
			return fmt.Errorf("unmarshal feed post: %w", err)
		}
		i.Post = &post
	}
	return nil
}

func (p *apiPost) toDomain() domain.Post {
	post := domain.Post{
		ID:            p.ID,
		PublicID:      p.PublicID,
		Type:          domain.PostType(p.Type),
		Title:         p.Title,
		Upvotes:       p.Upvotes,
		Downvotes:     p.Downvotes,
		NoComments:    p.NoComments,
		CommunityID:   p.CommunityID,
		CommunityName: p.CommunityName,
		CreatedAt:     p.CreatedAt,
	}
	if p.Body != nil {
		post.Body = *p.Body
	}
	if p.Link != nil {
		post.Link = &domain.Link{URL: p.Link.URL, Hostname: p.Link.Hostname}
	}
	if p.Image != nil {
		post.Image = &domain.Image{URL: p.Image.URL}
	}
	if p.Author != nil {
		post.Author = &domain.Author{Username: p.Author.Username}
	}
	return post
}

func (r *postsResponse) toDomain() *domain.FeedPage {
	page := &domain.FeedPage{
		Posts: make([]domain.Post, len(r.Posts)),
		Next:  deref(r.Next),
	}
	for i := range r.Posts {
		page.Posts[i] = r.Posts[i].toDomain()
	}
	return page
}

func (r *userFeedResponse) toDomain() *domain.UserFeedPage {
	page := &domain.UserFeedPage{
		Items: make([]domain.UserFeedItem, len(r.Items)),
		Next:  deref(r.Next),
	}
	for i, item := range r.Items {
		page.Items[i] = domain.UserFeedItem{Type: domain.UserFeedItemType(item.Type)}
		if item.Post != nil {
			post := item.Post.toDomain()
			page.Items[i].Post = &post
		}
	}
	return page
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
