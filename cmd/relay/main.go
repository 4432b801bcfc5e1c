package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v2"

	"github.com/ghostnote/confession-relay/internal/api"
	"github.com/ghostnote/confession-relay/internal/biz"
	"github.com/ghostnote/confession-relay/internal/conf"
	"github.com/ghostnote/confession-relay/internal/data"
	"github.com/ghostnote/confession-relay/internal/infra/openai"
	"github.com/ghostnote/confession-relay/internal/infra/telegram"
	"github.com/ghostnote/confession-relay/internal/server"
	"github.com/ghostnote/confession-relay/internal/service"
)

const sweepInterval = 5 * time.Minute

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:  "relay",
		Usage: "anonymous confession moderation relay for Telegram",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "dotenv file to load before reading the environment",
			Value:   ".env",
			EnvVars: []string{"RELAY_ENV_FILE"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format: text or json",
			Value:   "text",
			EnvVars: []string{"LOG_FORMAT"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		checkConfigCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "poll Telegram and relay confessions",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		logger := configLogger(cctx, cfg.Debug)

		ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

var checkConfigCmd = &cli.Command{
	Name:  "check-config",
	Usage: "validate configuration and exit",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "configuration ok (moderation chat %d, target channel %d, classifier enabled: %v)\n",
			cfg.Telegram.ModerationChatID, cfg.Telegram.TargetChannelID, cfg.ClassifierEnabled())
		return nil
	},
}

func loadConfig(cctx *cli.Context) (*conf.Config, error) {
	// Load .env file
	if err := godotenv.Load(cctx.String("env-file")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := conf.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func configLogger(cctx *cli.Context, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cctx.String("log-format") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context, cfg *conf.Config, logger *slog.Logger) error {
	// Initialize clients
	tgClient := telegram.NewClient(cfg.Telegram.BotToken, telegram.WithLogger(logger))

	me, err := tgClient.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	logger.Info("connected to Telegram", "bot", me.Username)

	var classifierClient *openai.Client
	if cfg.ClassifierEnabled() {
		classifierClient = openai.NewClient(cfg.Classifier.ToClassifierConfig(), logger)
		logger.Info("spam classifier enabled")
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(tgClient, classifierClient, cfg.ToDataOptions())
	if err != nil {
		return fmt.Errorf("create repositories: %w", err)
	}

	// Initialize usecase layer
	ucs := biz.NewUsecases(biz.Repos{
		Gateway:    repos.Gateway,
		RateLimit:  repos.RateLimit,
		Review:     repos.Review,
		Classifier: repos.Classifier,
	}, cfg.Messages, cfg.ToEncoderConfig(), cfg.ToModerationConfig(), logger)

	// Initialize service layer
	relaySvc := service.NewRelayService(
		ucs.Admission,
		ucs.Encoder,
		ucs.Moderation,
		repos.Gateway,
		repos.Review,
		cfg.Messages,
		service.RelayConfig{ModerationChatID: cfg.Telegram.ModerationChatID},
		logger,
	)
	sweeper := service.NewSweeper(repos.RateLimit, sweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// Health and metrics
	var apiServer *api.Server
	if cfg.MetricsAddr != "" {
		apiServer = api.NewServer(repos.Review, repos.RateLimit, ucs.Admission.IsClassifierEnabled(), cfg.MetricsAddr, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("API server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = apiServer.Stop(shutdownCtx)
		}()
	}

	// Initialize server
	srv := server.NewTelegramServer(tgClient, relaySvc, server.Config{
		BotID:            me.ID,
		ModerationChatID: cfg.Telegram.ModerationChatID,
	}, logger)

	logger.Info("starting confession relay")
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shut down")
	return nil
}
