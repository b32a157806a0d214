package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"jobtracker/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	infoKey
)

// requestInfo is filled in by inner middleware so Logger can report it.
type requestInfo struct {
	userID int64
}

// UserFrom returns the authenticated user, or nil outside Authenticate.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	if info, ok := ctx.Value(infoKey).(*requestInfo); ok {
		info.userID = u.ID
	}
	return context.WithValue(ctx, userKey, u)
}

func fail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":           false,
		"error":        msg,
		"field_errors": map[string]string{},
	})
}
