package db

import (
	"context"
	"testing"
)

func TestNewPool_RejectsMalformedURL(t *testing.T) {
	if _, err := NewPool(context.Background(), "://not-a-url", 5, 1); err == nil {
		t.Error("expected error for malformed database url")
	}
}
