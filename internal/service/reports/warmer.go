package reports

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type channelLister interface {
	Channels(ctx context.Context) []string
	InvalidateChannels(ctx context.Context) error
}

// ChannelWarmer rebuilds the cached channel list ahead of its expiry.
type ChannelWarmer struct {
	log *zap.Logger
	svc channelLister
}

func NewChannelWarmer(log *zap.Logger, svc channelLister) *ChannelWarmer {
	return &ChannelWarmer{log: log, svc: svc}
}

// Refresh drops the cached list and loads it again, returning the number of
// selectable channels.
func (w *ChannelWarmer) Refresh(ctx context.Context) (int, error) {
	if err := w.svc.InvalidateChannels(ctx); err != nil {
		w.log.Error("Failed to invalidate channel cache", zap.Error(err))
		return 0, err
	}
	names := w.svc.Channels(ctx)
	w.log.Info("Channel list refreshed", zap.Int("count", len(names)-1))
	return len(names) - 1, nil
}

func (w *ChannelWarmer) RunPeriodicRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log.Info("Starting periodic channel refresh", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stopping periodic channel refresh")
			return
		case <-ticker.C:
			if _, err := w.Refresh(ctx); err != nil {
				w.log.Error("Periodic refresh failed", zap.Error(err))
			}
		}
	}
}
