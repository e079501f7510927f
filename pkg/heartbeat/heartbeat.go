// Package heartbeat keeps the gateway liveness-visible and runs scheduled
// cache maintenance.
package heartbeat

import (
	"context"
	"time"

	"github.com/adhocore/gronx"

	"github.com/tinyland-inc/slacksweep/pkg/logger"
)

// Service logs a keep-alive line at a fixed interval and fires the
// maintenance hook whenever the cron expression is due, evaluated once per
// minute. It exits cleanly on context cancellation.
type Service struct {
	interval   time.Duration
	cron       string
	gron       *gronx.Gronx
	onMaintain func()
}

func NewService(intervalMinutes int, maintenanceCron string, onMaintain func()) *Service {
	if intervalMinutes < 1 {
		intervalMinutes = 15
	}
	return &Service{
		interval:   time.Duration(intervalMinutes) * time.Minute,
		cron:       maintenanceCron,
		gron:       gronx.New(),
		onMaintain: onMaintain,
	}
}

func (s *Service) Run(ctx context.Context) {
	alive := time.NewTicker(s.interval)
	defer alive.Stop()
	minute := time.NewTicker(time.Minute)
	defer minute.Stop()

	logger.InfoC("heartbeat", "Ping Pong! I'm alive")

	for {
		select {
		case <-ctx.Done():
			logger.InfoC("heartbeat", "Heartbeat stopped")
			return
		case <-alive.C:
			logger.InfoC("heartbeat", "Ping Pong! I'm alive")
		case now := <-minute.C:
			if s.cron == "" || s.onMaintain == nil {
				continue
			}
			due, err := s.gron.IsDue(s.cron, now)
			if err != nil {
				logger.WarnCF("heartbeat", "Invalid maintenance schedule", map[string]any{
					"cron":  s.cron,
					"error": err.Error(),
				})
				continue
			}
			if due {
				s.onMaintain()
			}
		}
	}
}
