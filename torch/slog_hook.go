package torch

import (
	"log/slog"
)

// SlogHook is a Hook that logs method invocations via Go's structured logging (log/slog).
// It logs at Debug level on success and Error level on failure.
//
// Example:
//
//	rt, _ := torch.NewRuntime(&torch.RuntimeOptions{
//	    Hooks: []torch.Hook{torch.NewSlogHook(slog.Default())},
//	})
type SlogHook struct {
	logger *slog.Logger
}

// NewSlogHook creates a Hook that logs invocations to the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogHook(logger *slog.Logger) *SlogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHook{logger: logger}
}

func (h *SlogHook) BeforeInvoke(_ *InvokeInfo) {}

func (h *SlogHook) AfterInvoke(info *InvokeInfo) {
	if info.Error != nil {
		h.logger.Error("invoke failed",
			slog.String("id", info.ID.String()),
			slog.String("method", info.Method),
			slog.Duration("duration", info.Duration),
			slog.String("error", info.Error.Error()),
		)
	} else {
		h.logger.Debug("invoke completed",
			slog.String("id", info.ID.String()),
			slog.String("method", info.Method),
			slog.Duration("duration", info.Duration),
		)
	}
}
