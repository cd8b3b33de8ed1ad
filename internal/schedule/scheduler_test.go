package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("0 * * * *"))
	assert.NoError(t, Validate("@hourly"))
	assert.Error(t, Validate("not-a-cron"))
	assert.Error(t, Validate(""))
}

func TestRegister(t *testing.T) {
	s := New()
	defer s.Stop()

	noop := func(ctx context.Context) {}

	require.NoError(t, s.Register("monitor", "0 * * * *", noop))
	assert.Equal(t, 1, s.Len())

	// Re-registering a name replaces the entry instead of stacking a second one.
	require.NoError(t, s.Register("monitor", "*/5 * * * *", noop))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Register("retrain", "@daily", noop))
	assert.Equal(t, 2, s.Len())
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := New()
	defer s.Stop()

	err := s.Register("bad", "every once in a while", func(ctx context.Context) {})

	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestRemove(t *testing.T) {
	s := New()
	defer s.Stop()

	require.NoError(t, s.Register("monitor", "0 * * * *", func(ctx context.Context) {}))

	s.Remove("monitor")
	assert.Equal(t, 0, s.Len())

	// Removing an unknown name is a no-op.
	s.Remove("monitor")
	assert.Equal(t, 0, s.Len())
}

func TestStopCancelsJobContext(t *testing.T) {
	s := New()
	require.NoError(t, s.Register("monitor", "0 * * * *", func(ctx context.Context) {}))

	s.Start()
	s.Stop()

	assert.Error(t, s.ctx.Err())
}
