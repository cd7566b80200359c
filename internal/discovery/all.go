package discovery

import (
	"context"
	"time"

	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DiscoverAll runs the broadcast and mDNS scanners in parallel for the
// same window and merges the results, broadcast replies first. An mDNS
// failure (no multicast route, for instance) is logged and ignored; a
// broadcast failure is returned with whatever mDNS found.
func DiscoverAll(ctx context.Context, timeout time.Duration) ([]*Device, error) {
	broadcast := NewScanner()
	broadcast.Timeout = timeout
	mdns := NewMDNSScanner()
	mdns.Timeout = timeout

	return discoverAll(ctx, broadcast, mdns)
}

func discoverAll(ctx context.Context, broadcast *Scanner, mdns *MDNSScanner) ([]*Device, error) {
	var fromBroadcast, fromMDNS []*Device

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromBroadcast, err = broadcast.ScanForDevicesWithContext(gctx)
		return err
	})
	if mdns != nil {
		g.Go(func() error {
			devices, err := mdns.ScanForDevicesWithContext(gctx)
			if err != nil {
				logging.Debug("mDNS discovery unavailable", zap.Error(err))
				return nil
			}
			fromMDNS = devices
			return nil
		})
	}
	err := g.Wait()

	return dedupe(fromBroadcast, fromMDNS), err
}
