package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 2*time.Second, backoff(2))
	assert.Equal(t, 8*time.Second, backoff(4))
	assert.Equal(t, maxBackoff, backoff(5))
	assert.Equal(t, maxBackoff, backoff(40))
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), Config{URL: "://not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database url")
}

func TestConnect_CancelledWhileRetrying(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := Connect(ctx, Config{
		URL:             "postgres://fieldops@127.0.0.1:1/fieldops?sslmode=disable&connect_timeout=1",
		ConnectAttempts: 3,
	})
	require.Error(t, err)
}
