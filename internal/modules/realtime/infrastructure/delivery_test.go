package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/shared/auth"
)

func TestHTTPChannel_StatusMapping(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotBody, gotToken string
	status := http.StatusOK
	setStatus := func(s int) {
		mu.Lock()
		status = s
		mu.Unlock()
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotBody = string(b)
		gotToken = r.Header.Get(auth.InternalTokenHeader)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	ch := NewHTTPChannel(time.Second, "s3cret", nil)
	conn := domain.Connection{ConnectionID: "abc", Endpoint: srv.URL + "/"}
	ctx := context.Background()

	require.NoError(t, ch.Send(ctx, conn, []byte(`{"kind":"x"}`)))
	mu.Lock()
	assert.Equal(t, "/@connections/abc", gotPath)
	assert.Equal(t, `{"kind":"x"}`, gotBody)
	assert.Equal(t, "s3cret", gotToken)
	mu.Unlock()

	setStatus(http.StatusGone)
	assert.ErrorIs(t, ch.Send(ctx, conn, nil), domain.ErrGone)

	for _, s := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusNotFound} {
		setStatus(s)
		err := ch.Send(ctx, conn, nil)
		assert.ErrorIs(t, err, domain.ErrTransient, "status %d", s)
		assert.False(t, errors.Is(err, domain.ErrGone))
	}
}

func TestHTTPChannel_NetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPChannel(200*time.Millisecond, "", nil).Send(context.Background(), domain.Connection{ConnectionID: "a", Endpoint: url}, nil)
	assert.ErrorIs(t, err, domain.ErrTransient)

	err = NewHTTPChannel(time.Second, "", nil).Send(context.Background(), domain.Connection{ConnectionID: "a"}, nil)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

type recordingChannel struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingChannel) Send(_ context.Context, conn domain.Connection, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, conn.ConnectionID)
	return nil
}

func TestRoutingChannel(t *testing.T) {
	local, remote := &recordingChannel{}, &recordingChannel{}
	ch := NewRoutingChannel("node-a", local, remote)
	ctx := context.Background()

	require.NoError(t, ch.Send(ctx, domain.Connection{ConnectionID: "1", NodeID: "node-a"}, nil))
	require.NoError(t, ch.Send(ctx, domain.Connection{ConnectionID: "2"}, nil))
	require.NoError(t, ch.Send(ctx, domain.Connection{ConnectionID: "3", NodeID: "node-b", Endpoint: "http://b"}, nil))

	assert.Equal(t, []string{"1", "2"}, local.ids)
	assert.Equal(t, []string{"3"}, remote.ids)
}

type fakeLiveness struct {
	alive map[string]bool
	err   error
}

func (f fakeLiveness) Alive(_ context.Context, nodeID string) (bool, error) {
	return f.alive[nodeID], f.err
}

func TestRoutingChannel_DeadOwnerIsGone(t *testing.T) {
	local, remote := &recordingChannel{}, &recordingChannel{}
	ch := NewRoutingChannel("node-a", local, remote).WithLiveness(fakeLiveness{alive: map[string]bool{"node-b": true}})
	ctx := context.Background()

	require.NoError(t, ch.Send(ctx, domain.Connection{ConnectionID: "1", NodeID: "node-b"}, nil))
	err := ch.Send(ctx, domain.Connection{ConnectionID: "2", NodeID: "node-gone"}, nil)
	assert.ErrorIs(t, err, domain.ErrGone)
	// local sockets never consult liveness
	require.NoError(t, ch.Send(ctx, domain.Connection{ConnectionID: "3", NodeID: "node-a"}, nil))

	assert.Equal(t, []string{"1"}, remote.ids)
	assert.Equal(t, []string{"3"}, local.ids)
}

func TestRoutingChannel_LivenessErrorIsTransient(t *testing.T) {
	remote := &recordingChannel{}
	ch := NewRoutingChannel("node-a", &recordingChannel{}, remote).WithLiveness(fakeLiveness{err: errors.New("redis down")})

	err := ch.Send(context.Background(), domain.Connection{ConnectionID: "1", NodeID: "node-b"}, nil)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.NotErrorIs(t, err, domain.ErrGone)
	assert.Empty(t, remote.ids)
}

func TestLocalChannelUsesHub(t *testing.T) {
	hub := NewHub(nil)
	hub.Attach(NewClient(nil, "A", 1))
	ch := NewLocalChannel(hub)

	require.NoError(t, ch.Send(context.Background(), domain.Connection{ConnectionID: "A"}, []byte("x")))
	assert.ErrorIs(t, ch.Send(context.Background(), domain.Connection{ConnectionID: "B"}, []byte("x")), domain.ErrGone)
}
