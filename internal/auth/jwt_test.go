/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIssueAndParse(t *testing.T) {
	token, err := Issue("secret", "u-1", "ops@harborlight.example", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := Parse("secret", token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != "u-1" {
		t.Errorf("UserID = %q, want u-1", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
}

func TestParseWrongKey(t *testing.T) {
	token, err := Issue("secret", "u-1", "ops@harborlight.example", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse("other", token); err == nil {
		t.Error("Parse() with wrong key should fail")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse("secret", "not-a-token"); err == nil {
		t.Error("Parse() of garbage should fail")
	}
}

func TestMiddleware(t *testing.T) {
	handler := Middleware("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok || claims.UserID != "u-1" {
			t.Error("claims missing from request context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := Issue("secret", "u-1", "ops@harborlight.example", "admin")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusNoContent},
		{"query token", func(r *http.Request) { q := r.URL.Query(); q.Set("token", token); r.URL.RawQuery = q.Encode() }, http.StatusNoContent},
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/thing", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
