package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/config"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/database"
	"github.com/vasapolrittideah/formation-hub/shared/logger"
	"github.com/vasapolrittideah/formation-hub/shared/mailer"
	"github.com/vasapolrittideah/formation-hub/shared/provider"
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

	userRepo := repository.NewUserMongoRepository(ctx, l, mongo.DB)
	identityRepo := repository.NewIdentityMongoRepository(ctx, l, mongo.DB)
	inviteCodeRepo := repository.NewInviteCodeMongoRepository(ctx, l, mongo.DB)
	resetTokenRepo := repository.NewPasswordResetTokenMongoRepository(ctx, l, mongo.DB)

	accessTokens, err := auth.NewJWTAuthenticator(cfg.AccessToken())
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize access token authenticator")
	}

	resetTokens, err := auth.NewJWTAuthenticator(cfg.PasswordResetToken())
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize password reset authenticator")
	}

	mail, err := mailer.New(cfg.Mailer, l)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize mailer")
	}

	validator, err := validation.New()
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize validator")
	}

	google := provider.NewGoogleOAuthProvider(cfg.GoogleClientID)

	authUsecase := usecase.NewAuthUsecase(
		userRepo,
		identityRepo,
		inviteCodeRepo,
		accessTokens,
		google,
		mail,
		l,
		cfg.PublicBaseURL,
	)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo,
		resetTokenRepo,
		resetTokens,
		mail,
		cfg.AppPasswordResetURL,
	)
	inviteUsecase := usecase.NewInviteUsecase(inviteCodeRepo, mail, cfg.AppRegisterURL)
	userAdminUsecase := usecase.NewUserAdminUsecase(userRepo, identityRepo)

	if _, err := usecase.BootstrapAdmin(ctx, userRepo, identityRepo, l, usecase.BootstrapAdminParams{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	}); err != nil {
		l.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	h := handler.NewAuthHTTPHandler(
		authUsecase,
		passwordResetUsecase,
		inviteUsecase,
		userAdminUsecase,
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
		l.Error().Err(err).Msg("auth service stopped with error")
		os.Exit(1)
	}
}
