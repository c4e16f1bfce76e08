// Package rss renders Discuit posts as RSS 2.0 documents.
package rss

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/feeds"

	"github.com/blackmichael/discuit-rss/internal/domain"
)

const unknownAuthor = "Unknown"

// Translator builds RSS documents whose links point at SiteURL.
type Translator struct {
	SiteURL string
}

// NewTranslator returns a Translator for the given site, e.g.
// https://discuit.net.
func NewTranslator(siteURL string) *Translator {
	return &Translator{SiteURL: strings.TrimRight(siteURL, "/")}
}

// Build renders posts as an RSS 2.0 document for the named scope.
func (t *Translator) Build(posts []domain.Post, scope string) (string, error) {
	doc, err := feeds.ToXML(t.Channel(posts, scope))
	if err != nil {
		return "", fmt.Errorf("encode rss: %w", err)
	}
	return doc, nil
}

// Write renders posts as an RSS 2.0 document to w.
func (t *Translator) Write(w io.Writer, posts []domain.Post, scope string) error {
	if err := feeds.WriteXML(t.Channel(posts, scope), w); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	return nil
}

// Channel maps posts to the RSS channel for scope.
func (t *Translator) Channel(posts []domain.Post, scope string) *feeds.RssFeed {
	channel := &feeds.RssFeed{
		Title:       scope,
		Link:        t.SiteURL + "/" + scope,
		Description: "Posts from " + scope,
		Items:       make([]*feeds.RssItem, len(posts)),
	}
	for i := range posts {
		channel.Items[i] = t.item(&posts[i], scope)
	}
	return channel
}

func (t *Translator) item(post *domain.Post, scope string) *feeds.RssItem {
	link := t.postURL(post, scope)
	author := authorName(post)

	return &feeds.RssItem{
		Title:       title(post),
		Link:        link,
		Description: t.description(post, link, author),
		Author:      author,
		Category:    "+" + scope,
		Comments:    link,
		PubDate:     post.CreatedAt.UTC().Format(http.TimeFormat),
	}
}

func (t *Translator) postURL(post *domain.Post, scope string) string {
	return t.SiteURL + "/" + scope + "/post/" + post.PublicID
}

func title(post *domain.Post) string {
	s := post.Title
	if post.Link != nil {
		s += " (Link)"
	}
	if post.Image != nil {
		s += " (Image)"
	}
	return s
}

func (t *Translator) description(post *domain.Post, link, author string) string {
	var b strings.Builder

	b.WriteString(post.Body)
	if post.Link != nil {
		fmt.Fprintf(&b, `<br>Submitted link: <a href="%s">%s</a>`, post.Link.URL, post.Link.Hostname)
	}
	if post.Image != nil {
		fmt.Fprintf(&b, `<br><img src="%s" alt="Image" />`, post.Image.URL)
	}

	b.WriteString("<br><br>")
	fmt.Fprintf(&b, "%d upvotes, %d downvotes, %d overall", post.Upvotes, post.Downvotes, post.Score())
	fmt.Fprintf(&b, `<br><a href="%s">View Post</a>`, link)
	fmt.Fprintf(&b, ` • <a href="%s">View %s</a>`, link, commentCount(post.NoComments))
	fmt.Fprintf(&b, ` • Posted by <a href="%s/@%s">@%s</a>`, t.SiteURL, author, author)

	return b.String()
}

func commentCount(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return strconv.Itoa(n) + " comments"
}

func authorName(post *domain.Post) string {
	if post.Author == nil || post.Author.Username == "" {
		return unknownAuthor
	}
	return post.Author.Username
}
