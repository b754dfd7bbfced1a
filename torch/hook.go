package torch

import (
	"time"

	"github.com/google/uuid"
)

// Hook provides callbacks around method invocations on foreign objects.
// Implement this interface to add metrics, logging, or tracing.
//
// Example:
//
//	type metricsHook struct {
//	    histogram prometheus.Histogram
//	}
//
//	func (h *metricsHook) BeforeInvoke(info *InvokeInfo) {}
//	func (h *metricsHook) AfterInvoke(info *InvokeInfo) {
//	    h.histogram.Observe(info.Duration.Seconds())
//	}
type Hook interface {
	// BeforeInvoke is called before the method is invoked.
	BeforeInvoke(info *InvokeInfo)

	// AfterInvoke is called after the invocation completes (or fails).
	// Duration and Error are populated.
	AfterInvoke(info *InvokeInfo)
}

// InvokeInfo contains information about a method invocation.
// ID and Method are set before the call, Duration and Error after.
type InvokeInfo struct {
	ID       uuid.UUID
	Method   string
	Duration time.Duration
	Error    error
}

type hookFunc struct {
	fn func(*InvokeInfo)
}

func (h *hookFunc) BeforeInvoke(_ *InvokeInfo)   {}
func (h *hookFunc) AfterInvoke(info *InvokeInfo) { h.fn(info) }

// AfterInvokeHook creates a Hook that calls fn after every invocation.
//
// Example:
//
//	rt, _ := torch.NewRuntime(&torch.RuntimeOptions{
//	    Hooks: []torch.Hook{
//	        torch.AfterInvokeHook(func(info *torch.InvokeInfo) {
//	            log.Printf("%s took %v", info.Method, info.Duration)
//	        }),
//	    },
//	})
func AfterInvokeHook(fn func(*InvokeInfo)) Hook {
	return &hookFunc{fn: fn}
}
