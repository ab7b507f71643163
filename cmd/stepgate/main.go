package main

import (
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openrba/stepgate/adapters/events"
	"github.com/openrba/stepgate/adapters/keystone"
	"github.com/openrba/stepgate/adapters/mailer"
	"github.com/openrba/stepgate/adapters/store"
	"github.com/openrba/stepgate/config"
	"github.com/openrba/stepgate/ports"
	"github.com/openrba/stepgate/rtt"
	"github.com/openrba/stepgate/service"
	transporthttp "github.com/openrba/stepgate/transport/http"
	"github.com/openrba/stepgate/transport/ws"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	regions, err := cfg.Regions()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid region configuration")
	}

	// Session backend: Redis when configured, in-memory otherwise
	var sessionStore ports.SessionStore
	var eventPub ports.EventPublisher

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		redisClient := redis.NewClient(opts)

		sessionStore = store.NewRedisStore(redisClient, cfg.SessionTTL)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create Redis publisher")
		}
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-memory session store")
		sessionStore = store.NewMemoryStore(cfg.SessionTTL)
	}

	authenticator := keystone.NewClient(cfg.Auth.RequestTimeout, logger)

	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Hostname: cfg.SMTP.Hostname,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
	notifier := service.NewNotifier(smtpMailer, cfg.SMTP.From, logger)

	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.SessionTTL)

	loginService := service.NewLoginService(
		sessionStore,
		authenticator,
		eventPub,
		notifier,
		tokens,
		regions,
		cfg.Auth.DefaultDomain,
		cfg.Auth.AllowExpiredPasswordChange,
		logger,
	)

	collector := rtt.NewCollector(sessionStore, rtt.NewRegistry(), logger)
	rttHandler := ws.NewHandler(collector, cfg.RTT.IdleTimeout, logger)

	router := transporthttp.SetupRouter(loginService, sessionStore, rttHandler)

	logger.Info().Str("listen", cfg.Listen).Msg("starting stepgate")
	if err := router.Run(cfg.Listen); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
