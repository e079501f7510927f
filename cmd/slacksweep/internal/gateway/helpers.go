package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slack-go/slack"

	"github.com/tinyland-inc/slacksweep/cmd/slacksweep/internal"
	"github.com/tinyland-inc/slacksweep/pkg/bus"
	"github.com/tinyland-inc/slacksweep/pkg/classify"
	"github.com/tinyland-inc/slacksweep/pkg/dispatch"
	"github.com/tinyland-inc/slacksweep/pkg/health"
	"github.com/tinyland-inc/slacksweep/pkg/heartbeat"
	"github.com/tinyland-inc/slacksweep/pkg/logger"
	"github.com/tinyland-inc/slacksweep/pkg/moderate"
	"github.com/tinyland-inc/slacksweep/pkg/platform"
	"github.com/tinyland-inc/slacksweep/pkg/tokens"
)

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required (token store)")
	}

	store, err := tokens.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("error opening token store: %w", err)
	}
	defer store.Close()

	tracked, err := moderate.NewEditTrackingStore(cfg.Caches.EditTrackingSize)
	if err != nil {
		return fmt.Errorf("error creating edit-tracking store: %w", err)
	}
	profiles, err := moderate.NewProfileCache(cfg.Caches.UserProfileSize)
	if err != nil {
		return fmt.Errorf("error creating profile cache: %w", err)
	}

	api := slack.New(cfg.Slack.BotToken, slack.OptionAppLevelToken(cfg.Slack.AppToken))
	messenger := platform.NewSlackMessenger(api)
	checker := classify.NewClient(
		cfg.Vision.BaseURL,
		cfg.Vision.APIKey,
		time.Duration(cfg.Vision.TimeoutSeconds)*time.Second,
	)

	orchestrator := moderate.NewOrchestrator(messenger, profiles)
	dispatcher := dispatch.New(
		checker,
		store,
		platform.NewSlackTeamActor,
		orchestrator,
		tracked,
		cfg.Slack.ExemptFrom,
	)

	eventBus := bus.NewEventBus()
	listener := platform.NewListener(api, eventBus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	heartbeatService := heartbeat.NewService(
		cfg.Heartbeat.IntervalMinutes,
		cfg.Heartbeat.MaintenanceCron,
		func() {
			profiles.Purge()
			logger.InfoCF("gateway", "Maintenance ran", map[string]any{
				"tracked_edits": tracked.Len(),
			})
		},
	)

	healthServer := health.NewServer(cfg.Gateway.Host, cfg.Gateway.Port)
	go func() {
		if err := healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCF("health", "Health server error", map[string]any{"error": err.Error()})
		}
	}()

	go dispatcher.Run(ctx, eventBus)
	if cfg.Heartbeat.Enabled {
		go heartbeatService.Run(ctx)
	}
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorCF("gateway", "Listener stopped", map[string]any{"error": err.Error()})
		}
	}()

	healthServer.SetReady(true)
	logger.InfoCF("gateway", "Gateway started", map[string]any{
		"health": fmt.Sprintf("http://%s:%d/health", cfg.Gateway.Host, cfg.Gateway.Port),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.InfoC("gateway", "Shutting down...")
	healthServer.SetReady(false)
	cancel()
	eventBus.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.WarnCF("gateway", "Health server shutdown error", map[string]any{"error": err.Error()})
	}

	logger.InfoC("gateway", "Quitting... Bye!")
	return nil
}
