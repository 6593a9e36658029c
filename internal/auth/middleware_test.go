package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddleware(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Minute)
	token, _ := issuer.Issue("alice", "user-1")

	var sawIdentity *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawIdentity = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(issuer, []string{"/health", "/auth/*"})(next)

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
	}{
		{"protected without token", "/anime/rank/1", "", http.StatusUnauthorized},
		{"protected with bad token", "/anime/rank/1", "Bearer junk", http.StatusUnauthorized},
		{"protected with valid token", "/anime/rank/1", "Bearer " + token, http.StatusOK},
		{"public exact match", "/health", "", http.StatusOK},
		{"public wildcard match", "/auth/token", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sawIdentity = nil
			r := httptest.NewRequest("GET", tt.path, nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Code == http.StatusUnauthorized {
				if got := w.Header().Get("WWW-Authenticate"); got == "" {
					t.Error("missing WWW-Authenticate header")
				}
				if body := w.Body.String(); body != `{"error":"could not validate credentials"}` {
					t.Errorf("401 body leaked detail: %s", body)
				}
			}
		})
	}

	t.Run("identity reaches the handler", func(t *testing.T) {
		sawIdentity = nil
		r := httptest.NewRequest("GET", "/anime/rank/1", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(httptest.NewRecorder(), r)
		if sawIdentity == nil || sawIdentity.ID != "user-1" {
			t.Errorf("identity = %+v, want user-1", sawIdentity)
		}
	})
}
