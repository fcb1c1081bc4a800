package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"request-throttler/throttle"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client [rate]",
		Short: "Send requests to the server at up to <rate> requests/second",
		Long: `Send one TCP request per admission, up to <rate> requests per second.

Each request carries its sequence number (decimal) and is fired without
waiting for the previous one. The rate may be given as the positional
argument or with --rate.

Examples:
  throttler client 1
  throttler client 100 --strategy fixed`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClient,
	}

	f := cmd.Flags()
	f.String("host", "", "server host")
	f.Int("port", 0, "server port")
	f.Float64("rate", 0, "requests/second target")
	f.String("strategy", "", "limiter strategy: bucket, fixed, xrate")
	f.Duration("send-timeout", 0, "timeout for each send")
	f.Int("max-in-flight", 0, "cap on concurrent sends (0 = unlimited)")
	f.Duration("in-flight-wait", 0, "how long a send waits for a free slot")
	annotate(f, map[string]string{
		"host":           "target.host",
		"port":           "target.port",
		"rate":           "limiter.rate",
		"strategy":       "limiter.strategy",
		"send-timeout":   "dispatch.send_timeout",
		"max-in-flight":  "dispatch.max_in_flight",
		"in-flight-wait": "dispatch.in_flight_wait",
	})
	return cmd
}

func runClient(cmd *cobra.Command, args []string) error {
	overrides := map[string]any{}
	if len(args) == 1 {
		r, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return errors.Wrapf(err, "invalid rate %q", args[0])
		}
		overrides["limiter.rate"] = r
	}

	cfg, err := loadConfig(cmd, overrides)
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

	d, err := throttle.NewClient(throttle.ClientOptions{
		Host:         cfg.Target.Host,
		Port:         cfg.Target.Port,
		Rate:         cfg.Limiter.Rate,
		Strategy:     cfg.Strategy(),
		SendTimeout:  cfg.Dispatch.SendTimeout,
		MaxInFlight:  cfg.Dispatch.MaxInFlight,
		InFlightWait: cfg.Dispatch.InFlightWait,
		Stats:        stats,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	logger.Info("client started",
		zap.String("target", cfg.Target.Host+":"+strconv.Itoa(cfg.Target.Port)),
		zap.Float64("rate", cfg.Limiter.Rate),
		zap.String("strategy", cfg.Limiter.Strategy),
		zap.Int("max_in_flight", cfg.Dispatch.MaxInFlight))

	err = d.Run(ctx)
	logger.Info("client stopped", zap.Uint64("admitted", d.Admitted()))
	return exitQuietly(err)
}
