package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sanaanm/webdesk/internal/audio"
	"github.com/sanaanm/webdesk/internal/config"
	"github.com/sanaanm/webdesk/internal/gallery"
	"github.com/sanaanm/webdesk/internal/playlist"
	"github.com/sanaanm/webdesk/internal/server"
	"github.com/sanaanm/webdesk/internal/window"
	"github.com/sanaanm/webdesk/pkg/events"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadOrCreate(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	bus := events.NewBus()
	defer bus.Close()

	registry := window.NewRegistry(bus, nil)

	device, err := buildDevice(cfg)
	if err != nil {
		return err
	}
	defer device.Close()

	engine := audio.NewEngine(device, bus)
	loadPlaylist(ctx, cfg, engine)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	gal, err := buildGallery(ctx, cfg, rdb)
	if err != nil {
		return err
	}

	hub := server.NewHub()
	go hub.Run()
	go hub.RunBusBridge(bus)

	srv := server.NewServer(registry, engine, gal, hub)
	router := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("webdeskd listening on %s", cfg.ListenAddr)
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func buildDevice(cfg *config.Config) (audio.Device, error) {
	switch cfg.AudioDevice {
	case "speaker":
		return audio.NewSpeakerDevice(), nil
	case "", "virtual":
		return audio.NewVirtualDevice(0), nil
	default:
		return nil, fmt.Errorf("unknown audio_device %q (want speaker or virtual)", cfg.AudioDevice)
	}
}

// loadPlaylist seeds the engine from the configured source. A failed
// load leaves the player idle with an empty playlist rather than
// taking the daemon down.
func loadPlaylist(ctx context.Context, cfg *config.Config, engine *audio.Engine) {
	var src playlist.Source
	switch {
	case cfg.PlaylistURL != "":
		src = playlist.NewHTTPSource(cfg.PlaylistURL, nil)
	case cfg.PlaylistPath != "":
		src = playlist.NewFileSource(cfg.PlaylistPath)
	default:
		log.Printf("webdeskd: no playlist source configured, player starts empty")
		return
	}

	tracks, err := src.Load(ctx)
	if err != nil {
		log.Printf("webdeskd: playlist load: %v", err)
		return
	}
	engine.SetPlaylist(tracks)
	engine.LoadTrack(false)
	log.Printf("webdeskd: loaded %d tracks", len(tracks))
}

func buildGallery(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*gallery.Service, error) {
	if !cfg.Gallery.Enabled {
		return nil, nil
	}
	g := cfg.Gallery

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(g.Region),
	}
	if g.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(g.AccessKeyID, g.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gallery aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if g.Endpoint != "" {
			o.BaseEndpoint = aws.String(g.Endpoint)
		}
		o.UsePathStyle = true
	})

	return gallery.NewService(client, g.Bucket, g.Prefix, g.PublicURL, g.ResizerURL, rdb), nil
}
