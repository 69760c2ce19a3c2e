package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Konsultn-Engineering/sqlprep/config"
)

var (
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sqlprep",
	Short: "Render and run SQL templates with typed placeholders",
	Long: `sqlprep substitutes %s, %d, %f and %t placeholders in SQL templates
with escaped literal values and can run the result against a configured store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Logging, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newLogger follows the production config, taking level and encoding from
// the config file. --verbose forces debug.
func newLogger(lc config.LoggingConfig, w io.Writer) (*zap.Logger, error) {
	level, err := lc.ZapLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	var enc zapcore.Encoder
	switch lc.Format {
	case "", "json":
		enc = zapcore.NewJSONEncoder(zc.EncoderConfig)
	case "console":
		enc = zapcore.NewConsoleEncoder(zc.EncoderConfig)
	default:
		return nil, fmt.Errorf("unknown logging format %q", lc.Format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "sqlprep.yaml", "Config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(mimeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
