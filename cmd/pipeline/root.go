package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Turn lectures, videos and slide decks into notes, audio and quizzes",
	Long: `pipeline routes media files through ffmpeg and a transcription engine, and
documents or images through text extraction and OCR. The resulting text can be
compiled into a LaTeX summary, narrated to a WAV file or turned into a quiz.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		log = logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)

		log.Debug(cmd.Context(), "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// withApp builds the dependency graph, runs fn and releases the store.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close store: %v\n", err)
		}
	}()
	return fn(ctx, a)
}
