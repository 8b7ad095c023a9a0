package ingress

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dia-relay/agent/internal/protocolclient"
	"dia-relay/network"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	calls []protocolclient.Report
	err   error
}

func (c *capture) forward(_ string, _ int, r protocolclient.Report, _ time.Duration) error {
	c.calls = append(c.calls, r)
	return c.err
}

func newCaptured(err error) (*Handler, *capture) {
	c := &capture{err: err}
	h := NewHandler("127.0.0.1", 5050, time.Second)
	h.Forward = c.forward
	return h, c
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_MissingIP(t *testing.T) {
	h, c := newCaptured(nil)
	rec := get(h, "/send?name=bot1&dia=5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Bad Request", rec.Body.String())
	assert.Empty(t, c.calls)
}

func TestHandler_WrongPath(t *testing.T) {
	h, c := newCaptured(nil)
	rec := get(h, "/other?ip=1.2.3.4")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, c.calls)
}

func TestHandler_Defaults(t *testing.T) {
	h, c := newCaptured(nil)
	rec := get(h, "/send?ip=1.2.3.4")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, c.calls, 1)
	assert.Equal(t, protocolclient.Report{
		Name: "unknown", IP: "1.2.3.4", Dia: "0", Mode: "send",
		Game: "unknown", Msg: "...", GameServer: "unknown",
	}, c.calls[0])
}

func TestHandler_ForwardFailureStillOK(t *testing.T) {
	h, c := newCaptured(errors.New("refused"))
	rec := get(h, "/send?ip=1.2.3.4&name=bot1&dia=77&msg=hello%20world&game_server=s1&game=g&mode=send")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, c.calls, 1)
	assert.Equal(t, "hello world", c.calls[0].Msg)
	assert.Equal(t, "77", c.calls[0].Dia)
}

func TestServe_ForwardsToHub(t *testing.T) {
	hub, err := network.ListenTCP("127.0.0.1", 0)
	require.NoError(t, err)
	got := make(chan []byte, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = hub.Serve(ctx, func(c *network.TCPClient) {
			defer c.Close()
			if b, err := c.Recv(2048); err == nil {
				got <- b
			}
		}, nil)
	}()

	ln, err := Listen(0)
	require.NoError(t, err)
	go func() { _ = Serve(ctx, ln, NewHandler("127.0.0.1", hub.Port(), time.Second)) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/send?ip=9.9.9.9&name=bot2&dia=3")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	select {
	case b := <-got:
		var r protocolclient.Report
		require.NoError(t, json.Unmarshal(b, &r))
		assert.Equal(t, "bot2", r.Name)
		assert.Equal(t, "9.9.9.9", r.IP)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not receive the report")
	}
}
