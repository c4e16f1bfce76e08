package discuit

import (
	"fmt"
	"strings"

	"github.com/blackmichael/discuit-rss/internal/domain"
)

// Session holds the credentials obtained from the bootstrap endpoint.
type Session struct {
	CSRFToken string

	// SessionCookieName is the cookie name the session ID was issued under.
	SessionCookieName string
	SessionID         string
}

// ParseSessionCookies extracts the session from the Set-Cookie values of the
// bootstrap response. The first value carries the CSRF token, the second the
// session ID.
func ParseSessionCookies(setCookies []string) (Session, error) {
	if len(setCookies) < 2 {
		return Session{}, fmt.Errorf("%w: expected 2 Set-Cookie headers, got %d", domain.ErrAuthentication, len(setCookies))
	}

	_, token, err := parseCookiePair(setCookies[0])
	if err != nil {
		return Session{}, fmt.Errorf("%w: csrf token: %v", domain.ErrAuthentication, err)
	}

	name, sessionID, err := parseCookiePair(setCookies[1])
	if err != nil {
		return Session{}, fmt.Errorf("%w: session id: %v", domain.ErrAuthentication, err)
	}

	return Session{
		CSRFToken:         token,
		SessionCookieName: name,
		SessionID:         sessionID,
	}, nil
}

// parseCookiePair returns the name and value of the leading name=value pair
// of a Set-Cookie value. The value runs up to the first ';'.
func parseCookiePair(setCookie string) (string, string, error) {
	pair, _, _ := strings.Cut(setCookie, ";")
	name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
	if !ok {
		return "", "", fmt.Errorf("malformed cookie %q", pair)
	}
	if name == "" || value == "" {
		return "", "", fmt.Errorf("empty cookie name or value in %q", pair)
	}
	return name, value, nil
}
