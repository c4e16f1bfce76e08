// Package discuittest provides an in-memory Discuit API for tests.
package discuittest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	CSRFToken         = "csrf-token-123"
	SessionCookieName = "SID"
	SessionID         = "session-abc"

	// NextCursor is returned as the pagination cursor of every listing.
	NextCursor = "next-page-cursor"
)

// Post is a post fixture in the upstream JSON shape.
type Post struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	PublicID      string    `json:"publicId"`
	Username      string    `json:"username"`
	CommunityID   string    `json:"communityId"`
	CommunityName string    `json:"communityName"`
	Title         string    `json:"title"`
	Body          *string   `json:"body"`
	Image         *Image    `json:"image"`
	Link          *Link     `json:"link,omitempty"`
	Upvotes       int       `json:"upvotes"`
	Downvotes     int       `json:"downvotes"`
	NoComments    int       `json:"noComments"`
	CreatedAt     time.Time `json:"createdAt"`
	Author        *User     `json:"author,omitempty"`
}

type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Link struct {
	URL      string `json:"url"`
	Hostname string `json:"hostname"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Comment is a comment fixture for user feeds.
type Comment struct {
	ID       string `json:"id"`
	PostID   string `json:"postId"`
	Username string `json:"username"`
	Body     string `json:"body"`
}

// Request is what the server saw of one API call.
type Request struct {
	Path      string
	Query     url.Values
	CSRFToken string
	SessionID string
}

type feedItem struct {
	Type string `json:"type"`
	Item any    `json:"item"`
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server is a fake Discuit API backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	posts       []Post
	communities map[string]string // name -> id
	userFeeds   map[string][]feedItem
	requests    []Request

	// InitialCookies are the Set-Cookie values of /api/_initial. Tests may
	// replace them before the client initializes.
	InitialCookies []string
}

// NewServer starts a fake Discuit API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		communities: map[string]string{},
		userFeeds:   map[string][]feedItem{},
		InitialCookies: []string{
			"csrftoken=" + CSRFToken + "; Path=/; Max-Age=31536000; SameSite=Lax",
			SessionCookieName + "=" + SessionID + "; Path=/; HttpOnly; SameSite=Lax",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/_initial", s.handleInitial)
	mux.HandleFunc("GET /api/communities/{name}", s.withSession(s.handleCommunity))
	mux.HandleFunc("GET /api/posts", s.withSession(s.handlePosts))
	mux.HandleFunc("GET /api/users/{name}/feed", s.withSession(s.handleUserFeed))

	s.Server = httptest.NewServer(mux)
	return s
}

// AddCommunity registers a community that can be looked up by name.
func (s *Server) AddCommunity(name, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.communities[name] = id
}

// AddPost appends a post to the global listing.
func (s *Server) AddPost(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
}

// AddUser registers a user with an empty feed.
func (s *Server) AddUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userFeeds[username]; !ok {
		s.userFeeds[username] = []feedItem{}
	}
}

// AddUserPost appends a post entry to a user's feed.
func (s *Server) AddUserPost(username string, p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userFeeds[username] = append(s.userFeeds[username], feedItem{Type: "post", Item: p})
}

// AddUserComment appends a comment entry to a user's feed.
func (s *Server) AddUserComment(username string, c Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userFeeds[username] = append(s.userFeeds[username], feedItem{Type: "comment", Item: c})
}

// Requests returns the API calls received so far, bootstrap excluded.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) handleInitial(w http.ResponseWriter, _ *http.Request) {
	for _, c := range s.InitialCookies {
		w.Header().Add("Set-Cookie", c)
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			CSRFToken: r.Header.Get("X-Csrf-Token"),
		}
		if c, err := r.Cookie(SessionCookieName); err == nil {
			req.SessionID = c.Value
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		if req.CSRFToken != CSRFToken || req.SessionID != SessionID {
			writeJSON(w, http.StatusForbidden, apiError{Status: http.StatusForbidden, Code: "invalid_session", Message: "invalid session"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleCommunity(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("byName") != "true" {
		writeJSON(w, http.StatusBadRequest, apiError{Status: http.StatusBadRequest, Message: "lookup by id not supported"})
		return
	}

	name := r.PathValue("name")
	s.mu.Lock()
	id, ok := s.communities[name]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Status: http.StatusNotFound, Code: "community_not_found", Message: "Community not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "name": name})
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseLimit(q.Get("limit"))
	communityID := q.Get("communityId")

	s.mu.Lock()
	posts := []Post{}
	for _, p := range s.posts {
		if communityID != "" && p.CommunityID != communityID {
			continue
		}
		if len(posts) == limit {
			break
		}
		posts = append(posts, p)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "next": NextCursor})
}

func (s *Server) handleUserFeed(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	name := r.PathValue("name")

	s.mu.Lock()
	feed, ok := s.userFeeds[name]
	if ok && len(feed) > limit {
		feed = feed[:limit]
	}
	items := append([]feedItem{}, feed...)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "next": NextCursor})
}

func parseLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 10
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
