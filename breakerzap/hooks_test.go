package breakerzap_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/switchyard/breaker"
	"github.com/switchyard/breaker/breakerzap"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

func (c *stubClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestNewHooks_LogsTrip(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	circuit := breaker.New("payments",
		breaker.WithConsecutiveFailures(1),
		breaker.WithHooks(breakerzap.NewHooks(zap.New(core), "payments")),
	)

	err := circuit.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, err)

	opened := logs.FilterMessage("circuit opened").All()
	require.Len(t, opened, 1)
	require.Equal(t, zapcore.WarnLevel, opened[0].Level)
	require.Equal(t, "payments", opened[0].ContextMap()["circuit"])

	require.Equal(t, 1, logs.FilterMessage("call failed").Len())
}

func TestNewHooks_LogsRejection(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	circuit := breaker.New("payments",
		breaker.WithConsecutiveFailures(1),
		breaker.WithHooks(breakerzap.NewHooks(zap.New(core), "payments")),
	)

	ctx := context.Background()
	_ = circuit.Do(ctx, func(ctx context.Context) error {
		return errors.New("boom")
	})

	err := circuit.Do(ctx, func(ctx context.Context) error {
		return nil
	})
	require.ErrorIs(t, err, breaker.ErrOpen)

	rejected := logs.FilterMessage("call rejected").All()
	require.Len(t, rejected, 1)
	require.Equal(t, zapcore.DebugLevel, rejected[0].Level)
}

func TestNewHooks_LogsForcedTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	circuit := breaker.New("payments",
		breaker.WithHooks(breakerzap.NewHooks(zap.New(core), "payments")),
	)

	require.True(t, circuit.ForceOpen())
	require.True(t, circuit.ForceClosed())

	require.Equal(t, 1, logs.FilterMessage("circuit opened").Len())

	closed := logs.FilterMessage("circuit closed").All()
	require.Len(t, closed, 1)
	require.Equal(t, zapcore.InfoLevel, closed[0].Level)
}

func TestNewHooks_LogsRecoveryCycle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	clock := &stubClock{now: time.Unix(1700000000, 0)}

	circuit := breaker.New("payments",
		breaker.WithConsecutiveFailures(1),
		breaker.WithConsecutiveSuccesses(1),
		breaker.WithCooldown(time.Second),
		breaker.WithClock(clock),
		breaker.WithHooks(breakerzap.NewHooks(zap.New(core), "payments")),
	)

	ctx := context.Background()
	_ = circuit.Do(ctx, func(ctx context.Context) error {
		return errors.New("boom")
	})

	clock.advance(2 * time.Second)

	err := circuit.Do(ctx, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, breaker.Closed, circuit.State())

	for _, msg := range []string{
		"circuit opened",
		"circuit probing",
		"circuit closed",
		"call failed",
		"call succeeded",
	} {
		require.Equal(t, 1, logs.FilterMessage(msg).Len(), msg)
	}
}
