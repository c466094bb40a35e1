package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"github.com/username/remote-work-bot/internal/absence"
	"github.com/username/remote-work-bot/internal/config"
	"github.com/username/remote-work-bot/internal/console"
	"github.com/username/remote-work-bot/internal/reconcile"
	"github.com/username/remote-work-bot/pkg/dateutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "remote-work-bot",
		Short: "absence.io remote work reconciler",
		Long:  "Create missing \"Remote Work\" absences in absence.io for your remote weekdays, month by month",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Logging.File != "" {
				logger, err = initFileLogger(cfg.Logging.File, cfg.Logging.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(daysCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func reconcileCmd() *cobra.Command {
	var dryRun bool
	var start string
	var teeOutput string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Propose and create missing remote work absences, starting with the current month",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := io.Writer(os.Stdout)
			noColor := false
			if teeOutput != "" {
				if err := os.MkdirAll(filepath.Dir(teeOutput), 0o755); err != nil {
					return fmt.Errorf("failed to create tee path: %w", err)
				}
				f, err := os.OpenFile(teeOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open tee-output file: %w", err)
				}
				defer f.Close()
				out = io.MultiWriter(os.Stdout, f)
				noColor = true
			}
			op := console.New(os.Stdin, out, noColor)
			if teeOutput != "" {
				op.Printf("📝 Output is mirrored to %s\n", teeOutput)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			weekdays, err := cfg.Weekdays()
			if err != nil {
				return err
			}
			if weekdays.Empty() {
				return config.ErrNoWeekdays
			}
			ref, err := cfg.ReferenceLocation()
			if err != nil {
				return err
			}
			local, err := cfg.LocalLocation()
			if err != nil {
				return err
			}

			anchor, err := anchorFor(start, time.Now().In(local))
			if err != nil {
				return err
			}

			client := absence.NewClient(
				cfg.Absence.APIEndpoint,
				absence.NewHawkSigner(cfg.Absence.APIKeyID, cfg.Absence.APIKey),
				cfg.Absence.GetTimeout(),
				cfg.Absence.Retries,
				logger,
			)

			r := reconcile.NewReconciler(client, op, reconcile.Options{
				Email:         cfg.RemoteWork.Email,
				ReasonName:    cfg.RemoteWork.Reason,
				Weekdays:      weekdays,
				ReferenceZone: ref,
				DryRun:        dryRun,
			}, logger)

			outcome, err := r.Run(cmd.Context(), anchor)
			if err != nil {
				if errors.Is(err, reconcile.ErrUserNotFound) {
					op.Failuref("❌ %v\n", err)
				}
				logger.Error("Reconciliation failed", zap.Error(err))
				return err
			}

			logger.Info("Reconciliation ended", zap.Stringer("outcome", outcome))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List missing days without creating absences")
	cmd.Flags().StringVar(&start, "start", "", "Month to start with (YYYY-MM), default current month")
	cmd.Flags().StringVar(&teeOutput, "tee-output", "", "Mirror console output to file")

	return cmd
}

// anchorFor returns now, or the first of the requested month at now's clock time
func anchorFor(month string, now time.Time) (time.Time, error) {
	if month == "" {
		return now, nil
	}

	m, err := dateutil.ParseMonth(month, now.Location())
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(m.Year(), m.Month(), 1, now.Hour(), now.Minute(), 0, 0, now.Location()), nil
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stderr is shared with the operator prompt
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
