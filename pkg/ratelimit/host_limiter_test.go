package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiterSpacesRequests(t *testing.T) {
	limiter := NewHostLimiter(100 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "tuyensinh.ctu.edu.vn"))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "tuyensinh.ctu.edu.vn"))
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestHostLimiterIndependentHosts(t *testing.T) {
	limiter := NewHostLimiter(time.Second)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "tuyensinh.ctu.edu.vn"))

	// A different host is not delayed by the first.
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "ctc.ctu.edu.vn"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestHostLimiterContextCancel(t *testing.T) {
	limiter := NewHostLimiter(5 * time.Second)
	require.NoError(t, limiter.Wait(context.Background(), "tuyensinh.ctu.edu.vn"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "tuyensinh.ctu.edu.vn")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHostLimiterBackoffAfterErrors(t *testing.T) {
	limiter := NewHostLimiter(0)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "tuyensinh.ctu.edu.vn"))
	for i := 0; i < 4; i++ {
		limiter.RecordError("tuyensinh.ctu.edu.vn")
	}

	stats := limiter.Stats()["tuyensinh.ctu.edu.vn"]
	assert.True(t, stats.InBackoff)
	assert.Equal(t, int64(4), stats.ErrorCount)

	limiter.RecordSuccess("tuyensinh.ctu.edu.vn")
	assert.Equal(t, int64(0), limiter.Stats()["tuyensinh.ctu.edu.vn"].ErrorCount)
}

func TestHostLimiterStatsCounts(t *testing.T) {
	limiter := NewHostLimiter(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx, "tuyensinh.ctu.edu.vn"))
	}
	assert.Equal(t, int64(3), limiter.Stats()["tuyensinh.ctu.edu.vn"].RequestCount)
}
