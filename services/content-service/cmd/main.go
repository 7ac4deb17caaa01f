package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/config"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/handler"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/media"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/database"
	"github.com/vasapolrittideah/formation-hub/shared/logger"
	"github.com/vasapolrittideah/formation-hub/shared/server"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(cfg.ServiceName, cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := mongo.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("error closing database connection")
		}
	}()
	l.Info().Str("database", cfg.Mongo.Database).Msg("database connection established")

	formationRepo := repository.NewFormationMongoRepository(ctx, l, mongo.DB)
	chapterRepo := repository.NewChapterMongoRepository(ctx, l, mongo.DB)
	templateRepo := repository.NewLibraryItemMongoRepository(ctx, l, mongo.DB, model.KindTemplate)
	promptRepo := repository.NewLibraryItemMongoRepository(ctx, l, mongo.DB, model.KindPrompt)
	likeRepo := repository.NewLikeMongoRepository(ctx, l, mongo.DB)

	accessTokens, err := auth.NewJWTAuthenticator(cfg.AccessToken())
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize access token verifier")
	}

	storage, err := media.NewS3Storage(ctx, cfg.Media)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize media storage")
	}
	if !cfg.Media.Enabled() {
		l.Warn().Msg("S3 is not configured, media uploads are disabled")
	}

	validator, err := validation.New()
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize validator")
	}

	formationUsecase := usecase.NewFormationUsecase(formationRepo, chapterRepo, likeRepo, l)
	chapterUsecase := usecase.NewChapterUsecase(formationRepo, chapterRepo, l)
	libraryUsecase := usecase.NewLibraryUsecase(likeRepo, l, templateRepo, promptRepo)
	likeUsecase := usecase.NewLikeUsecase(likeRepo, formationRepo, templateRepo, promptRepo, l)

	h := handler.NewContentHTTPHandler(
		formationUsecase,
		chapterUsecase,
		libraryUsecase,
		likeUsecase,
		storage,
		validator,
		l,
	)

	srv := server.New(server.Options{
		ServiceName: cfg.ServiceName,
		HTTPPort:    cfg.HTTPPort,
		GRPCPort:    cfg.GRPCPort,
		Handler:     handler.NewRouter(h, accessTokens, l, cfg.PublicBaseURL),
		Discovery:   cfg.Discovery,
	}, l)

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("content service stopped with error")
		os.Exit(1)
	}
}
