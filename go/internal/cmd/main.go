package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dancras/tv-quiz-party-sub000/go/clients/quizapi"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/clock"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/push"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", config.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	userID := getEnv("QUIZ_USER_ID", uuid.New().String())
	client := quizapi.NewClient(config.Server.BaseURL, userID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clockwork.NewRealClock()
	offset, err := clock.SyncOffset(ctx, client, clk)
	if err != nil {
		log.Fatal().Err(err).Msg("clock sync failed")
	}
	corrected := clock.NewCorrected(clk, offset)

	sess := session.New(userID, config.Client.Presenter, client, corrected, func(post func(func())) clock.Frames {
		return clock.NewTickerFrames(clk, clock.FrameInterval, post)
	})
	subscriber := push.NewSubscriber(config.Server.PushURL, userID, sess.DeliverEvent, push.DefaultSubscriberConfig())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(gctx) })
	g.Go(func() error { return subscriber.Run(gctx) })

	log.Info().
		Str("user_id", userID).
		Str("api_url", config.Server.BaseURL).
		Msg("quiz party client started")

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("session terminated")
	}
}
