package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/REGENCY-14/Finalyear/internal/config"
	"github.com/REGENCY-14/Finalyear/internal/handler"
	authHandler "github.com/REGENCY-14/Finalyear/internal/handler/auth"
	personnelHandler "github.com/REGENCY-14/Finalyear/internal/handler/personnel"
	patientHandler "github.com/REGENCY-14/Finalyear/internal/handler/patient"
	symptomHandler "github.com/REGENCY-14/Finalyear/internal/handler/symptom"
	uploadHandler "github.com/REGENCY-14/Finalyear/internal/handler/upload"
	"github.com/REGENCY-14/Finalyear/internal/middleware"
	"github.com/REGENCY-14/Finalyear/internal/repository/postgres"
	redisrepo "github.com/REGENCY-14/Finalyear/internal/repository/redis"
	"github.com/REGENCY-14/Finalyear/internal/router"
	auditService "github.com/REGENCY-14/Finalyear/internal/service/audit"
	authService "github.com/REGENCY-14/Finalyear/internal/service/auth"
	imageService "github.com/REGENCY-14/Finalyear/internal/service/image"
	mailService "github.com/REGENCY-14/Finalyear/internal/service/mail"
	patientService "github.com/REGENCY-14/Finalyear/internal/service/patient"
	personnelService "github.com/REGENCY-14/Finalyear/internal/service/personnel"
	symptomService "github.com/REGENCY-14/Finalyear/internal/service/symptom"
	"github.com/REGENCY-14/Finalyear/pkg/logger"
	"github.com/REGENCY-14/Finalyear/pkg/metrics"
	"github.com/REGENCY-14/Finalyear/pkg/security"
	"github.com/REGENCY-14/Finalyear/pkg/storage"
	"github.com/REGENCY-14/Finalyear/pkg/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	store, err := storage.NewMinioStore(context.Background(), storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		BaseURL:   cfg.Storage.BaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to object storage")
	}

	tokens := token.NewService(token.Config{
		Secret:   cfg.JWT.Secret,
		Lifetime: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		Issuer:   cfg.JWT.Issuer,
	})

	m := metrics.New("medrecord")

	personnelRepo := postgres.NewPersonnelRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	symptomRepo := postgres.NewSymptomRepository(db)
	imageRepo := postgres.NewImageRepository(db)
	resetRepo := postgres.NewResetTokenRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	revocation := redisrepo.NewRevocationStore(redisClient)

	auditor := auditService.NewService(auditRepo, log)
	mailer := mailService.NewService(cfg.SMTP)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	authSvc := authService.NewService(personnelRepo, resetRepo, revocation, tokens, hasher, mailer, auditor, log)
	personnelSvc := personnelService.NewService(personnelRepo, auditor)
	patientSvc := patientService.NewService(patientRepo, auditor)
	symptomSvc := symptomService.NewService(symptomRepo, patientRepo, auditor, log)
	imageSvc := imageService.NewService(imageRepo, patientRepo, store, cfg.Upload, auditor, m, log)

	authMw := middleware.NewAuthMiddleware(tokens, personnelRepo, revocation)

	r := router.NewRouter(
		authMw,
		authHandler.NewHandler(authSvc, authMw),
		personnelHandler.NewHandler(personnelSvc),
		patientHandler.NewHandler(patientSvc),
		symptomHandler.NewHandler(symptomSvc),
		uploadHandler.NewHandler(imageSvc),
		handler.NewHealthHandler(db, redisClient),
		m,
		log,
		cfg,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
