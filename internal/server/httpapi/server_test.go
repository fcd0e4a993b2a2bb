package httpapi

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, nil, nil, 0)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + l.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := newTestServer(t, nil, nil, 0)
	assert.Error(t, s.Run(context.Background(), "127.0.0.1:99999"))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestAcceptableImageType(t *testing.T) {
	assert.True(t, acceptableImageType(""))
	assert.True(t, acceptableImageType("image/jpeg"))
	assert.True(t, acceptableImageType("application/octet-stream"))
	assert.False(t, acceptableImageType("text/plain; charset=utf-8"))
	assert.False(t, acceptableImageType(";;"))
}
