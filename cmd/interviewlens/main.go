package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keagan/interviewlens/internal/config"
	"github.com/keagan/interviewlens/internal/ffmpeg"
	"github.com/keagan/interviewlens/internal/logging"
	"github.com/keagan/interviewlens/internal/models"
	"github.com/keagan/interviewlens/internal/pipeline"
	"github.com/keagan/interviewlens/internal/report"
	"github.com/keagan/interviewlens/internal/retention"
	"github.com/keagan/interviewlens/internal/scoring"
	"github.com/keagan/interviewlens/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool

	analyzeUser     string
	analyzeOut      string
	analyzeStrategy string
	analyzeKeep     bool

	serveAddr string
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "interviewlens",
	Short: "interviewlens - interview video feedback",
	Long:  "Scores gaze, expression, speaking rate and intonation of a recorded interview answer.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "user id recorded in the result")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "also save the result under this directory")
	analyzeCmd.Flags().BoolVar(&analyzeKeep, "keep-audio", false, "keep the extracted WAV in work_dir")
	analyzeCmd.Flags().StringVar(&analyzeStrategy, "strategy", "", "scoring strategy (default from config)")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(listCmd)
}

// newPipeline wires ffmpeg, the model registry and the pipeline. The caller
// must close the registry.
func newPipeline(cfg *config.Config) (*pipeline.Pipeline, *models.Registry, error) {
	exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	registry := models.NewRegistry(log.Logger, cfg)
	pipe, err := pipeline.New(log.Logger, cfg, exec, registry)
	if err != nil {
		registry.Close()
		return nil, nil, err
	}
	return pipe, registry, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input video]",
	Short: "Analyze an interview video and print the feedback report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if analyzeStrategy != "" {
			cfg.Scoring.Strategy = analyzeStrategy
		}
		if analyzeKeep {
			cfg.Pipeline.KeepAudio = true
		}

		pipe, registry, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		defer registry.Close()

		result, err := pipe.Run(cmd.Context(), args[0], analyzeUser)
		if err != nil {
			return err
		}

		if analyzeOut != "" {
			path, err := report.NewFileSink(log.Logger, analyzeOut).Save(cmd.Context(), result)
			if err != nil {
				return err
			}
			cliLog := logging.WithComponent("cli")
			cliLog.Info().Str("path", path).Msg("result saved")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		pipe, registry, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		defer registry.Close()

		sched := retention.NewScheduler(log.Logger)
		defer sched.Stop()

		sink := report.NewFileSink(log.Logger, cfg.OutputsDir)
		srv := server.New(log.Logger, cfg, pipe, sink, sched)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		cliLog := logging.WithComponent("cli")
		cliLog.Info().Str("path", path).Msg("config written")
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model management commands",
}

var modelsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load every model once and report what is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		out := cmd.OutOrStdout()

		registry := models.NewRegistry(log.Logger, cfg)
		defer registry.Close()

		failed := 0
		if _, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads); err != nil {
			fmt.Fprintf(out, "ffmpeg       FAIL  %v\n", err)
			failed++
		} else {
			fmt.Fprintf(out, "ffmpeg       ok\n")
		}
		if _, err := registry.FaceMesh(); err != nil {
			fmt.Fprintf(out, "face mesh    FAIL  %v\n", err)
			failed++
		} else {
			fmt.Fprintf(out, "face mesh    ok    %s\n", cfg.Vision.ModelPath)
		}
		if _, err := registry.Transcriber(); err != nil {
			fmt.Fprintf(out, "transcriber  FAIL  %v\n", err)
			failed++
		} else {
			fmt.Fprintf(out, "transcriber  ok    %s (%s)\n", cfg.Whisper.URL, cfg.Whisper.Model)
		}

		if failed > 0 {
			return fmt.Errorf("%d component(s) unavailable", failed)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [strategies]",
	Short: "List available resources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "strategies":
			for _, name := range scoring.Names() {
				marker := " "
				if name == scoring.DefaultStrategy {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		default:
			return fmt.Errorf("unknown resource %q", args[0])
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	modelsCmd.AddCommand(modelsCheckCmd)
}
