package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"request-throttler/internal/config"
	"request-throttler/internal/observability"
)

// viperKeyAnnotation marks a flag with the config key it overrides.
const viperKeyAnnotation = "throttler/viper-key"

// Version is set by main via ldflags.
var Version = "dev"

// NewRootCmd builds the command tree. Each call returns an independent tree,
// so tests can execute commands without shared flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "throttler",
		Short: "Rate-controlled TCP request dispatcher and request-rate tracker",
		Long: `throttler sends TCP requests at a controlled rate (client) and measures
the observed request rate of incoming connections (server).

Run "throttler server" in one terminal and "throttler client 20" in another.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (YAML, optional)")
	root.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "log format: console or json")
	root.PersistentFlags().Bool("stats", false, "record stats to Redis")
	root.PersistentFlags().String("stats-redis-addr", "", "Redis address for stats")
	annotate(root.PersistentFlags(), map[string]string{
		"log-level":        "logging.level",
		"log-format":       "logging.format",
		"stats":            "stats.enabled",
		"stats-redis-addr": "stats.redis_addr",
	})

	root.AddCommand(newClientCmd(), newServerCmd(), newConfigCmd())
	return root
}

// Execute runs the CLI with ctx (cancelled on SIGINT/SIGTERM by main).
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func annotate(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		_ = fs.SetAnnotation(name, viperKeyAnnotation, []string{key})
	}
}

// loadConfig layers defaults, the --config file, env and the command's
// annotated flags, then applies overrides (e.g. positional args).
func loadConfig(cmd *cobra.Command, overrides map[string]any) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	v, err := config.New(cfgFile)
	if err != nil {
		return nil, err
	}

	bind := func(f *pflag.Flag) {
		if keys, ok := f.Annotations[viperKeyAnnotation]; ok && len(keys) == 1 {
			_ = v.BindPFlag(keys[0], f)
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)

	for k, val := range overrides {
		v.Set(k, val)
	}
	return config.Load(v)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, errors.Wrap(err, "logging")
	}
	return logger, nil
}

// exitQuietly treats shutdown by signal as success.
func exitQuietly(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

