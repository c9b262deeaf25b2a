package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pfenwick/retain-api/internal/api/shared"
)

// UserIDHeader carries the authenticated learner's ID, set by the edge
// gateway that terminates authentication in front of this service.
const UserIDHeader = "X-User-ID"

// Identity extracts the user ID from the gateway header and adds it to
// the request context. Requests without a valid UUID are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity header required")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user identity")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
