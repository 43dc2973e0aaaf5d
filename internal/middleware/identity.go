package middleware

import (
	"context"
	"net/http"
	"strings"
)

// UserIDHeader carries the authenticated user id set by the upstream auth
// gateway. Requests without it are treated as guest checkouts.
const UserIDHeader = "X-User-ID"

type userIDKey struct{}

func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
