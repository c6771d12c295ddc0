// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/DustyBest/podbox/internal/api/rest"
	"github.com/DustyBest/podbox/internal/app/announce"
	"github.com/DustyBest/podbox/internal/app/coordinator"
	"github.com/DustyBest/podbox/internal/app/progress"
	"github.com/DustyBest/podbox/internal/app/sequencer"
	"github.com/DustyBest/podbox/internal/infra/audio"
	"github.com/DustyBest/podbox/internal/infra/config"
	"github.com/DustyBest/podbox/internal/infra/feed"
	"github.com/DustyBest/podbox/internal/infra/kvstore"
	"github.com/DustyBest/podbox/internal/infra/logger"
	"github.com/DustyBest/podbox/internal/infra/prefs"
	"github.com/DustyBest/podbox/internal/infra/speech"
)

var (
	app        = kingpin.New("podbox-server", "podbox podcast playback server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Run server (defer ensures shutdown hooks are called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	// Progress persistence
	kv, err := kvstore.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open progress store: %w", err)
	}
	defer kv.Close()

	store := progress.NewStore(kv, progress.WithThrottleWindow(cfg.SaveThrottle()))

	// User preferences override the config's preferred voice when set
	preferredVoice := cfg.Speech.PreferredVoice
	if path, err := prefs.DefaultPath(); err == nil {
		if p := prefs.Load(path); p.PreferredVoice != "" {
			preferredVoice = p.PreferredVoice
		}
	}

	// Speech device; an unavailable synthesizer degrades to silence
	// rather than blocking playback
	device, err := speech.New(cfg.Speech.Device.Type, cfg.Speech.Device.Settings)
	if err != nil {
		zlog.Warn().Msgf("Speech device unavailable, announcements disabled: %v", err)
		device = speech.NewNoopDevice()
	}

	engine := announce.NewEngine(device, preferredVoice)
	defer engine.Close()

	// Audio backend
	element, err := audio.NewMPV(audio.MPVConfig{
		Binary:       cfg.Audio.MPVPath,
		SocketPath:   cfg.Audio.SocketPath,
		PollInterval: cfg.AudioPollInterval(),
	})
	if err != nil {
		return fmt.Errorf("failed to start audio backend: %w", err)
	}
	defer element.Close()

	// Playback coordinator
	seq := sequencer.New()
	coord := coordinator.New(seq, store, engine, element, coordinator.Config{
		HardwareResumeDelay: cfg.HardwareResumeDelay(),
		FarewellText:        cfg.Speech.Farewell,
	})
	coord.Start()
	defer coord.Close()

	// Fetch the episode list
	fetchCtx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout())
	episodes := feed.NewClient(cfg.Feed.URL).FetchEpisodes(fetchCtx)
	cancel()
	if len(episodes) == 0 {
		zlog.Warn().Msgf("No episodes available from feed: url=%s", cfg.Feed.URL)
	}
	coord.SetEpisodes(episodes)

	// Control API with h2c (HTTP/2 cleartext) support
	apiServer := rest.New(coord)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(apiServer.Handler(), &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}
