package main

import (
	"context"
	"os"
	osSignal "os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestNotifyContextCancelsOnSignal(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}

	ctx, stop := notifyContext(context.Background(), zaptest.NewLogger(t))
	defer stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected run context to be cancelled by the signal")
	}
}

func TestNotifyContextStop(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})
	signalNotify = func(chan<- os.Signal, ...os.Signal) {}

	ctx, stop := notifyContext(context.Background(), zaptest.NewLogger(t))
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected stop to cancel the context")
	}
}
