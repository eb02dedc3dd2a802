package sutureext

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()

	if err := SanitizeError(ctx, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	plain := errors.New("boom")
	if err := SanitizeError(ctx, plain); err != plain {
		t.Errorf("expected plain error unchanged, got %v", err)
	}

	wrapped := fmt.Errorf("read: %w", context.DeadlineExceeded)
	err := SanitizeError(ctx, wrapped)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected deadline error to be hidden while ctx is live")
	}
	if err == nil || err.Error() != wrapped.Error() {
		t.Errorf("expected message %q, got %v", wrapped.Error(), err)
	}

	err = SanitizeError(ctx, errors.Join(context.Canceled, suture.ErrDoNotRestart))
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Error("expected ErrDoNotRestart to survive")
	}
	if errors.Is(err, context.Canceled) {
		t.Error("expected context.Canceled to be hidden")
	}
}

func TestSanitizeError_Done(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := SanitizeError(ctx, errors.New("boom")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestServiceFunc(t *testing.T) {
	called := false
	s := NewServiceFunc("test", func(ctx context.Context) error {
		called = true
		return nil
	})
	if s.String() != "test" {
		t.Errorf("expected name test, got %s", s.String())
	}
	if err := s.Serve(context.Background()); err != nil || !called {
		t.Errorf("expected fn to run without error, got called=%v err=%v", called, err)
	}
}
