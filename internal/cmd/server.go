package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"request-throttler/throttle"
)

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Accept connections and log the observed requests/second",
		Long: `Accept TCP connections and track how many arrived in the last horizon
(1s by default). The count is logged as "<n> requests/second" every
report interval (0.5s by default).`,
		Args: cobra.NoArgs,
		RunE: runServer,
	}

	f := cmd.Flags()
	f.String("host", "", "listen host")
	f.Int("port", 0, "listen port")
	f.Duration("horizon", 0, "how long each request is counted")
	f.Duration("interval", 0, "report interval")
	annotate(f, map[string]string{
		"host":     "listen.host",
		"port":     "listen.port",
		"horizon":  "window.horizon",
		"interval": "report.interval",
	})
	return cmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	stats, closeStats, err := openStats(ctx, cfg.Stats, logger)
	if err != nil {
		return err
	}
	defer closeStats()

	tracker := throttle.NewTracker(throttle.TrackerOptions{
		Host:           cfg.Listen.Host,
		Port:           cfg.Listen.Port,
		Horizon:        cfg.Window.Horizon,
		ReportInterval: cfg.Report.Interval,
		Stats:          stats,
		Logger:         logger,
	})

	logger.Info("server starting",
		zap.String("listen", cfg.Listen.Host+":"+strconv.Itoa(cfg.Listen.Port)),
		zap.Duration("horizon", cfg.Window.Horizon),
		zap.Duration("interval", cfg.Report.Interval))

	return exitQuietly(tracker.Run(ctx))
}
