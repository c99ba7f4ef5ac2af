package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/omarshaarawi/survivorbot/internal/api/footballdata"
	"github.com/omarshaarawi/survivorbot/internal/api/gemini"
	"github.com/omarshaarawi/survivorbot/internal/api/league"
	"github.com/omarshaarawi/survivorbot/internal/bot"
	"github.com/omarshaarawi/survivorbot/internal/config"
	"github.com/omarshaarawi/survivorbot/internal/metrics"
	"github.com/omarshaarawi/survivorbot/internal/pool"
	"github.com/omarshaarawi/survivorbot/internal/repository/memory"
	"github.com/omarshaarawi/survivorbot/internal/scheduler"
	"github.com/omarshaarawi/survivorbot/internal/service"
	"github.com/omarshaarawi/survivorbot/internal/store"
	"github.com/omarshaarawi/survivorbot/internal/teams"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "survivorbot",
		Usage: "Premier League survivor pool on Telegram",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "dotenv file to load before reading the environment",
				EnvVars: []string{"ENV_FILE"},
			},
		},
		Before: loadEnv,
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the Telegram bot",
				Action: runBot,
			},
			{
				Name:   "refresh",
				Usage:  "load league data once and print it",
				Action: refreshOnce,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func loadEnv(c *cli.Context) error {
	if err := godotenv.Load(c.String("env-file")); err != nil {
		slog.Warn("Error loading .env file", "path", c.String("env-file"), "error", err)
	}
	return nil
}

type components struct {
	service *service.SurvivorService
	league  *league.API
	clock   clockwork.Clock
}

func build(ctx context.Context, cfg *config.Config, backend store.Backend) (*components, error) {
	clock := clockwork.NewRealClock()
	directory := teams.PremierLeague()

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, err
	}

	st := store.Open(ctx, backend, cfg.Store.Key, store.DefaultState(cfg.Game.StartingCoins))
	repo := memory.NewRepository()

	footballClient := footballdata.NewClient(cfg.FootballData)
	footballAPI := footballdata.NewAPI(footballClient, directory)

	var generator gemini.Generator = gemini.Disabled{}
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		generator = client
	} else {
		slog.Warn("GEMINI_API_KEY not set, search fallback and scout are disabled")
	}
	geminiAPI := gemini.NewAPI(generator, directory, cfg.Gemini.Season)

	leagueAPI := league.NewAPI(footballAPI, geminiAPI, repo, clock)

	engine := pool.NewEngine(pool.Rules{
		EntryCost:  cfg.Game.EntryCost,
		MaxEntries: cfg.Game.MaxEntries,
		LockWindow: cfg.Game.LockWindow,
	}, directory)

	survivorService := service.NewSurvivorService(engine, st, repo, leagueAPI, directory, clock, service.Settings{
		StartingCoins: cfg.Game.StartingCoins,
		Location:      location,
	})

	return &components{service: survivorService, league: leagueAPI, clock: clock}, nil
}

func runBot(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		return err
	}

	backend, err := store.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer backend.Close()

	app, err := build(ctx, cfg, backend)
	if err != nil {
		return err
	}

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, app.service)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(cfg.Scheduler, app.clock, app.league, app.service, telegramBot.SendMessage)
	if err != nil {
		return err
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           newRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error stopping HTTP server", "error", err)
	}

	return nil
}

func refreshOnce(c *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	app, err := build(c.Context, cfg, store.NewMemoryBackend())
	if err != nil {
		return err
	}

	if _, err := app.league.Refresh(c.Context); err != nil {
		slog.Warn("League data is incomplete", "error", err)
	}
	fmt.Fprintln(c.App.Writer, app.service.LeagueReport())
	return nil
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", healthCheckHandler)
	r.Get("/healthz", healthCheckHandler)
	r.Handle("/metrics", metrics.Handler())

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
