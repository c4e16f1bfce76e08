package domain

import "time"

// PostType is the kind of content a post carries.
type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypeImage PostType = "image"
	PostTypeLink  PostType = "link"
)

// Post is a Discuit post reduced to the fields the feed needs.
type Post struct {
	// ID is the upstream post ID.
	ID string

	// PublicID is the short ID used in post URLs (e.g. /gaming/post/{PublicID}).
	PublicID string

	Type  PostType
	Title string

	// Body is empty for image and link posts.
	Body string

	// Link is set only for link posts.
	Link *Link

	// Image is set only for image posts.
	Image *Image

	Upvotes    int
	Downvotes  int
	NoComments int

	CommunityID   string
	CommunityName string

	// Author is nil when upstream did not embed the author record.
	Author *Author

	CreatedAt time.Time
}

// Score returns upvotes minus downvotes.
func (p *Post) Score() int {
	return p.Upvotes - p.Downvotes
}

// Link is the payload of a link post.
type Link struct {
	URL      string
	Hostname string
}

// Image is the payload of an image post.
type Image struct {
	URL string
}

// Author identifies the user who created a post.
type Author struct {
	Username string
}

// Community is the subset of a Discuit community needed to filter posts.
type Community struct {
	ID   string
	Name string
}
