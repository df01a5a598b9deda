// Package breakerzap wires circuit lifecycle events into a zap logger.
package breakerzap

import (
	"go.uber.org/zap"

	"github.com/switchyard/breaker"
)

// NewHooks returns a hook registry that logs every circuit event through
// logger. The circuit opening logs at Warn, the other transitions at Info,
// per-call outcomes and rejections at Debug. name tags every entry so
// circuits sharing a logger stay distinguishable.
func NewHooks(logger *zap.Logger, name string) *breaker.Hooks {
	log := logger.With(zap.String("circuit", name))

	h := breaker.NewHooks()
	h.SetOnOpen(func() { log.Warn("circuit opened") })
	h.SetOnClose(func() { log.Info("circuit closed") })
	h.SetOnHalfOpen(func() { log.Info("circuit probing") })
	h.SetOnSuccess(func() { log.Debug("call succeeded") })
	h.SetOnFailure(func() { log.Debug("call failed") })
	h.SetOnReject(func() { log.Debug("call rejected") })
	return h
}
