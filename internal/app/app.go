package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dag10/DJ-sub000/internal/controller"
	"github.com/dag10/DJ-sub000/internal/playback"
	"github.com/dag10/DJ-sub000/internal/repository/filesource"
	redisrepo "github.com/dag10/DJ-sub000/internal/repository/redis"
	"github.com/dag10/DJ-sub000/internal/room"
	service "github.com/dag10/DJ-sub000/internal/service/room"
	"github.com/dag10/DJ-sub000/pkg/ctxlogger"
	"github.com/dag10/DJ-sub000/pkg/redisclient"
)

type AppConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	LogLevel       string `json:"log_level"`
	DJSlots        int    `json:"dj_slots"`
	QueueLimit     int    `json:"queue_limit"`
	SegmentSeconds int    `json:"segment_seconds"`
	BitrateKbps    int    `json:"bitrate_kbps"`
	FFmpegPath     string `json:"ffmpeg_path"`
	MediaDir       string `json:"media_dir"`
	RedisHost      string `json:"redis_host"`
	RedisPort      int    `json:"redis_port"`
	RedisPassword  string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.DJSlots < 1 {
		return fmt.Errorf("dj slots must be greater than 0")
	}
	if cfg.QueueLimit < 1 {
		return fmt.Errorf("queue limit must be greater than 0")
	}
	if cfg.SegmentSeconds < 1 {
		return fmt.Errorf("segment seconds must be greater than 0")
	}
	if cfg.BitrateKbps < 8 {
		return fmt.Errorf("bitrate must be at least 8 kbps")
	}
	if cfg.MediaDir == "" {
		return fmt.Errorf("media dir must be set")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	store := redisrepo.NewRepo(rc, logger)
	source := filesource.NewResolver(cfg.MediaDir)
	encoder := playback.NewFFmpegEncoder(cfg.FFmpegPath, cfg.BitrateKbps)
	engine := playback.NewEngine(encoder, playback.Config{
		SegmentSeconds: cfg.SegmentSeconds,
		BitrateKbps:    cfg.BitrateKbps,
	}, logger)

	registry := room.NewRegistry()
	roomService := service.NewService(store, registry, engine, source, logger, cfg.DJSlots, cfg.QueueLimit)
	if err := roomService.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap rooms: %w", err)
	}

	controller := controller.NewController(roomService, engine.ContentType(), logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		for _, r := range registry.List() {
			r.Close()
		}

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
