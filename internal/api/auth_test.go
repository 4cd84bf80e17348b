package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestBearerToken checks header parsing: the exact Bearer prefix and a
// 32 character lowercase hex token, nothing else.
func TestBearerToken(t *testing.T) {
	valid := strings.Repeat("a", 32)

	tests := []struct {
		name        string
		header      string
		wantToken   string
		wantMessage string
	}{
		{"valid", "Bearer " + valid, valid, ""},
		{"missing", "", "", "Authorization header is missing"},
		{"no prefix", valid, "", "Authorization header is missing"},
		{"wrong scheme", "Basic " + valid, "", "Authorization header is missing"},
		{"lowercase scheme", "bearer " + valid, "", "Authorization header is missing"},
		{"bare word", "Bearer", "", "Authorization header is missing"},
		{"short", "Bearer abc", "", "Token has an invalid length"},
		{"long", "Bearer " + valid + "0", "", "Token has an invalid length"},
		{"uppercase hex", "Bearer " + strings.Repeat("A", 32), "", "Token has an invalid length"},
		{"non hex", "Bearer " + strings.Repeat("g", 32), "", "Token has an invalid length"},
		{"inner space", "Bearer " + valid[:16] + " " + valid[:15], "", "Token has an invalid length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/game/state", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			tok, aerr := bearerToken(r)
			if tt.wantMessage == "" {
				if aerr != nil {
					t.Fatalf("bearerToken failed: %+v", aerr)
				}
				if string(tok) != tt.wantToken {
					t.Errorf("token = %q, want %q", tok, tt.wantToken)
				}
				return
			}
			if aerr == nil {
				t.Fatalf("bearerToken accepted %q", tt.header)
			}
			if aerr.status != http.StatusUnauthorized || aerr.code != codeInvalidToken {
				t.Errorf("error = %d %s, want 401 %s", aerr.status, aerr.code, codeInvalidToken)
			}
			if aerr.message != tt.wantMessage {
				t.Errorf("message = %q, want %q", aerr.message, tt.wantMessage)
			}
		})
	}
}
