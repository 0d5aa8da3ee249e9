package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestIssueAndValidate(t *testing.T) {
	s := NewService("secret")
	tok, err := s.IssueRoomToken("board-1")
	if err != nil {
		t.Fatal(err)
	}
	room, err := s.ValidateToken(tok.Token)
	if err != nil || room != "board-1" {
		t.Errorf("ValidateToken = %q, %v", room, err)
	}
}

func TestValidateRejects(t *testing.T) {
	s := NewService("secret")
	tok, _ := s.IssueRoomToken("board-1")

	other := NewService("other-secret")
	expired := NewService("secret")
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, _ := expired.IssueRoomToken("board-1")

	tests := []struct {
		name  string
		svc   *Service
		token string
	}{
		{"garbage", s, "not-a-token"},
		{"wrong secret", other, tok.Token},
		{"expired", s, old.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRoomMiddleware(t *testing.T) {
	s := NewService("secret")
	tok, _ := s.IssueRoomToken("board-1")

	r := mux.NewRouter()
	r.Handle("/rooms/{room}", s.RoomMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(RoomFromContext(r.Context())))
	})))

	tests := []struct {
		name   string
		url    string
		header string
		status int
	}{
		{"bearer", "/rooms/board-1", "Bearer " + tok.Token, http.StatusOK},
		{"query", "/rooms/board-1?token=" + tok.Token, "", http.StatusOK},
		{"missing", "/rooms/board-1", "", http.StatusUnauthorized},
		{"bad scheme", "/rooms/board-1", "Basic abc", http.StatusUnauthorized},
		{"other room", "/rooms/board-2", "Bearer " + tok.Token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && rec.Body.String() != "board-1" {
				t.Errorf("room in context = %q", rec.Body.String())
			}
		})
	}
}
