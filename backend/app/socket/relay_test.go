package socket

import (
	"context"
	"net"
	"testing"
	"time"

	"dia-relay/network"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_Send(t *testing.T) {
	srv, err := network.ListenTCP("127.0.0.1", 0)
	require.NoError(t, err)
	got := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = srv.Serve(ctx, func(c *network.TCPClient) {
			defer c.Close()
			b, err := c.Recv(1024)
			if err == nil {
				got <- string(b)
			}
		}, nil)
	}()

	r := NewRelay(srv.Port(), time.Second, zerolog.Nop())
	require.NoError(t, r.Send("127.0.0.1", "STOP_ALL"))

	select {
	case cmd := <-got:
		assert.Equal(t, "STOP_ALL", cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not receive the command")
	}
}

func TestRelay_SendUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	r := NewRelay(port, 500*time.Millisecond, zerolog.Nop())
	assert.Error(t, r.Send("127.0.0.1", "x"))
}

func TestRelay_SendEmpty(t *testing.T) {
	r := NewRelay(6000, time.Second, zerolog.Nop())
	assert.ErrorIs(t, r.Send("127.0.0.1", ""), ErrEmptyCommand)
}
