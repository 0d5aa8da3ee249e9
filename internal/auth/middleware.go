package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const RoomKey contextKey = "room"

// tokenFrom reads a bearer token from the Authorization header, falling back
// to the token query parameter that browsers must use for websockets.
func tokenFrom(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], true
	}
	token := r.URL.Query().Get("token")
	return token, token != ""
}

// RoomMiddleware rejects requests whose token was not issued for the {room}
// route variable.
func (s *Service) RoomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFrom(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
			return
		}

		room, err := s.ValidateToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		if want := mux.Vars(r)["room"]; want != "" && want != room {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "token not valid for this room"})
			return
		}

		ctx := context.WithValue(r.Context(), RoomKey, room)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RoomFromContext(ctx context.Context) string {
	room, _ := ctx.Value(RoomKey).(string)
	return room
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
