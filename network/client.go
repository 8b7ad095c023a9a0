package network

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// TCPClient wraps one connected TCP socket speaking the frame protocol.
type TCPClient struct {
	conn net.Conn
}

// DialTCP connects to a TCP server, giving up after timeout.
func DialTCP(host string, port int, timeout time.Duration) (*TCPClient, error) {
	if host == "" || port <= 0 {
		return nil, errors.New("invalid host or port")
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}
	return &TCPClient{conn: conn}, nil
}

// Send writes payload as one frame.
func (c *TCPClient) Send(payload []byte) error {
	if !c.IsOpen() {
		return errors.New("client not open")
	}
	return WriteFrame(c.conn, payload)
}

// Recv reads one frame of at most max bytes.
func (c *TCPClient) Recv(max int) ([]byte, error) {
	if !c.IsOpen() {
		return nil, errors.New("client not open")
	}
	return ReadFrame(c.conn, max)
}

// SetDeadline bounds every following read and write.
func (c *TCPClient) SetDeadline(t time.Time) error {
	if !c.IsOpen() {
		return errors.New("client not open")
	}
	return c.conn.SetDeadline(t)
}

// RemoteIP returns the peer host without port, or "" when unknown.
func (c *TCPClient) RemoteIP() string {
	if !c.IsOpen() {
		return ""
	}
	host, _, err := net.SplitHostPort(c.conn.RemoteAddr().String())
	if err != nil {
		return ""
	}
	return host
}

// IsOpen reports whether the underlying socket is still valid.
func (c *TCPClient) IsOpen() bool {
	return c != nil && c.conn != nil
}

// Close closes the connection.
func (c *TCPClient) Close() error {
	if !c.IsOpen() {
		return errors.New("client not open")
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// SendOnce dials, sends a single frame and closes. Nothing is read back.
func SendOnce(host string, port int, payload []byte, timeout time.Duration) error {
	c, err := DialTCP(host, port, timeout)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Send(payload)
}
