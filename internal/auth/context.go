package auth

import (
	"context"
	"net/http"
	"strings"
)

// HeaderToken is the header the web client sends its credential in.
const HeaderToken = "x-auth-token"

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user id and true if set; otherwise "", false.
func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// TokenFromRequest looks for a credential in the x-auth-token header, then in
// an Authorization bearer header, then (when allowQuery is set) in the token
// query parameter. Browsers cannot set headers on a WebSocket handshake, so the
// realtime endpoint passes allowQuery.
func TokenFromRequest(r *http.Request, allowQuery bool) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderToken)); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if allowQuery {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	return ""
}
