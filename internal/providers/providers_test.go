package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joshuakim/sharpline/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindUnreachable},
		{http.StatusBadGateway, KindUnreachable},
		{http.StatusRequestTimeout, KindUnreachable},
		{http.StatusUnauthorized, KindMalformedResponse},
		{http.StatusNotFound, KindMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromStatus("oddsapi", tt.status, []byte("nope"))
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Contains(t, err.Error(), "oddsapi")
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("refresh: %w", Unreachable("nbastats", errors.New("dial tcp")))

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnreachable, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "secret", r.Header.Get("X-Key"))
			w.Header().Set("X-Requests-Remaining", "42")
			fmt.Fprint(w, `{"value": 7}`)
		case "/garbage":
			fmt.Fprint(w, `{"value": `)
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	header := http.Header{}
	header.Set("X-Key", "secret")

	h, err := GetJSON(context.Background(), srv.Client(), "test", srv.URL+"/ok", header, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Value)
	assert.Equal(t, "42", h.Get("X-Requests-Remaining"))

	_, err = GetJSON(context.Background(), srv.Client(), "test", srv.URL+"/garbage", nil, &out)
	kind, _ := KindOf(err)
	assert.Equal(t, KindMalformedResponse, kind)

	_, err = GetJSON(context.Background(), srv.Client(), "test", srv.URL+"/limited", nil, &out)
	kind, _ = KindOf(err)
	assert.Equal(t, KindRateLimited, kind)

	_, err = GetJSON(context.Background(), srv.Client(), "test", srv.URL+"/down", nil, &out)
	kind, _ = KindOf(err)
	assert.Equal(t, KindUnreachable, kind)
}

func TestGetJSONTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := GetJSON(context.Background(), http.DefaultClient, "test", url, nil, &struct{}{})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnreachable, kind)
}

func newTestGuard(retries, threshold int) *Guard {
	return NewGuard(GuardConfig{
		Name:             "test",
		MaxRetries:       retries,
		RetryDelay:       time.Millisecond,
		BreakerThreshold: threshold,
	}, logger.Discard())
}

func TestGuardRetriesUntilSuccess(t *testing.T) {
	g := newTestGuard(2, 10)
	calls := 0

	err := g.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Unreachable("test", errors.New("reset"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGuardGivesUpAfterMaxRetries(t *testing.T) {
	g := newTestGuard(2, 10)
	calls := 0

	err := g.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return FromStatus("test", http.StatusTooManyRequests, nil)
	})

	kind, _ := KindOf(err)
	assert.Equal(t, KindRateLimited, kind)
	assert.Equal(t, 3, calls)
}

func TestGuardDoesNotRetryMalformed(t *testing.T) {
	g := newTestGuard(3, 10)
	calls := 0

	err := g.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Malformed("test", errors.New("bad json"))
	})

	kind, _ := KindOf(err)
	assert.Equal(t, KindMalformedResponse, kind)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "closed", g.State())
}

func TestGuardWrapsPlainErrors(t *testing.T) {
	g := newTestGuard(0, 10)

	err := g.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})

	kind, _ := KindOf(err)
	assert.Equal(t, KindUnreachable, kind)
}

func TestGuardOpensBreaker(t *testing.T) {
	g := newTestGuard(0, 2)
	calls := 0
	failing := func(ctx context.Context) error {
		calls++
		return Unreachable("test", errors.New("down"))
	}

	_ = g.Do(context.Background(), failing)
	_ = g.Do(context.Background(), failing)
	assert.Equal(t, "open", g.State())

	err := g.Do(context.Background(), failing)
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnreachable, kind)
	assert.Equal(t, 2, calls, "open breaker must not call through")
}

func TestGuardHonorsCancellation(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "test", MaxRetries: 5, RetryDelay: time.Hour, BreakerThreshold: 10}, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- g.Do(ctx, func(ctx context.Context) error {
			return Unreachable("test", errors.New("down"))
		})
	}()
	cancel()

	select {
	case err := <-done:
		kind, _ := KindOf(err)
		assert.Equal(t, KindUnreachable, kind)
	case <-time.After(2 * time.Second):
		t.Fatal("guard ignored cancellation")
	}
}
