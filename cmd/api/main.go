package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/motionlog/internal/api"
	"example.com/motionlog/internal/auth"
	"example.com/motionlog/internal/config"
	"example.com/motionlog/internal/domain"
	"example.com/motionlog/internal/live"
	"example.com/motionlog/internal/logging"
	"example.com/motionlog/internal/observability"
	"example.com/motionlog/internal/publish"
	"example.com/motionlog/internal/sensor"
	httptransport "example.com/motionlog/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	sink := logging.NewSink(logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer sink.Close()
	logger := sink.Logger("motionlog")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := domain.NewSessionLog()
	sessions.Subscribe(func(s domain.ActivitySession) {
		observability.RecordSessionRecorded(string(s.Source), s.Timestamp)
	})
	service := domain.NewService(sessions, domain.WithDefaultLiveName(cfg.DefaultLiveName))

	var publisher *publish.SessionPublisher
	if cfg.PublishSessions {
		producer := publish.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		publisher = publish.NewSessionPublisher(producer, cfg.SessionTopic, cfg.PublishBuffer,
			publish.WithLogger(sink.Logger("publish")))
		detach := publisher.Attach(sessions)
		defer detach()
		go publisher.Start(ctx)
	}

	var (
		source     sensor.Source = sensor.Unavailable{}
		pushSource *sensor.PushSource
		sourceDone = make(chan struct{})
	)
	switch cfg.SensorMode {
	case config.SensorModePush:
		pushSource = sensor.NewPushSource()
		source = pushSource
		close(sourceDone)
	case config.SensorModeKafka:
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.SampleGroupID,
			Topic:    cfg.SampleTopic,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
		kafkaSource := sensor.NewKafkaSource(reader, sensor.WithLogger(sink.Logger("sensor")))
		source = kafkaSource
		go func() {
			defer close(sourceDone)
			if err := kafkaSource.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("sample reader stopped: %v", err)
			}
			if err := kafkaSource.Close(); err != nil {
				logger.Printf("close sample reader: %v", err)
			}
		}()
	default:
		close(sourceDone)
	}

	displayLogger := sink.Logger("display")
	var lastLabel string
	display := live.DisplayFunc(func(u live.Update) {
		if u.Label == lastLabel {
			return
		}
		lastLabel = u.Label
		displayLogger.Printf("%s [%s] %s", u.Label, u.Icon, live.FormatElapsed(u.Elapsed))
	})
	liveSession := live.NewSession(source, service,
		live.WithDisplay(display),
		live.WithLogger(sink.Logger("live")),
	)

	var handlerOpts []api.Option
	if pushSource != nil {
		handlerOpts = append(handlerOpts, api.WithPushSource(pushSource))
	}
	if !cfg.AuthEnabled {
		handlerOpts = append(handlerOpts, api.WithoutScopes())
	}
	handler := api.NewHandler(service, liveSession, handlerOpts...)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	var root http.Handler = mux
	if cfg.AuthEnabled {
		root = auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}).Wrap(root)
	} else {
		logger.Printf("authentication disabled; all endpoints are open")
	}
	root = httptransport.Chain(root,
		httptransport.RequestLogger(sink.Logger("http")),
		httptransport.CORS(cfg.CORSOrigin),
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, root)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Printf("motionlog listening on %s (sensor=%s)", cfg.HTTPAddress, cfg.SensorMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
	liveSession.Suspend()
	cancel()

	<-sourceDone
	if publisher != nil {
		publisher.Wait()
	}
}
