package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeClosesStorageWhenListenerFails(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	closed := false
	srv := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), srv, func(context.Context) error {
			closed = true
			return nil
		}, logging.Discard())
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
		assert.True(t, closed)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the listener failed")
	}
}

func TestServeClosesStorageOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	closed := false
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, srv, func(context.Context) error {
			closed = true
			return nil
		}, logging.Discard())
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.True(t, closed)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}
}
