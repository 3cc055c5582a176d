package main

import (
	"testing"

	"github.com/justintake/justintake/internal/config"
)

func TestCorsOriginFunc(t *testing.T) {
	cfg := &config.Config{
		BaseDomain:  "justintake.com",
		CORSOrigins: []string{"http://localhost:3000"},
	}
	allow := corsOriginFunc(cfg)

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://acme.justintake.com", true},
		{"https://acme.justintake.com:8443", true},
		{"https://justintake.com", true},
		{"http://localhost:3000", true},
		{"https://evil.com", false},
		{"https://justintake.com.evil.com", false},
	}

	for _, tt := range tests {
		got, err := allow(tt.origin)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.origin, err)
		}
		if got != tt.want {
			t.Errorf("origin %q: expected %v, got %v", tt.origin, tt.want, got)
		}
	}
}
