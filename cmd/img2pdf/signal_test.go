package main

import (
	"context"
	"testing"
	"time"
)

func TestNotifyContext_PropagatesParentCancel(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := notifyContext(parent)
	defer stop()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled after parent cancel")
	}
}

func TestNotifyContext_StopReleases(t *testing.T) {
	t.Parallel()

	ctx, stop := notifyContext(context.Background())
	stop()

	// After stop the context is still usable; it just no longer listens
	// for signals. It must not be canceled by the stop itself unless the
	// parent was.
	if ctx.Err() != nil {
		t.Errorf("ctx.Err() = %v, want nil after stop", ctx.Err())
	}
}
