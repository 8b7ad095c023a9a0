package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const acceptRetryDelay = 50 * time.Millisecond

// TCPServer wraps a listening TCP socket.
type TCPServer struct {
	ln net.Listener
}

// ListenTCP binds host:port. Port 0 picks a free port (see Addr).
func ListenTCP(host string, port int) (*TCPServer, error) {
	if port < 0 {
		return nil, errors.New("invalid port")
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("tcp listen failed: %w", err)
	}
	return &TCPServer{ln: ln}, nil
}

// Addr returns the bound address.
func (s *TCPServer) Addr() *net.TCPAddr {
	return s.ln.Addr().(*net.TCPAddr)
}

// Port returns the bound port.
func (s *TCPServer) Port() int { return s.Addr().Port }

// Accept waits for and returns the next connection.
func (s *TCPServer) Accept() (*TCPClient, error) {
	if s == nil || s.ln == nil {
		return nil, errors.New("server not open")
	}
	conn, err := s.ln.Accept()
	if err != nil {
		return nil, err
	}
	return &TCPClient{conn: conn}, nil
}

// Serve accepts until ctx is cancelled or the listener is closed, running
// handle in its own goroutine per connection. Transient accept errors are
// passed to onErr and the loop continues.
func (s *TCPServer) Serve(ctx context.Context, handle func(*TCPClient), onErr func(error)) error {
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	for {
		client, err := s.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if onErr != nil {
				onErr(err)
			}
			time.Sleep(acceptRetryDelay)
			continue
		}
		go handle(client)
	}
}

// Close closes the listener.
func (s *TCPServer) Close() error {
	if s == nil || s.ln == nil {
		return errors.New("server not open")
	}
	return s.ln.Close()
}
