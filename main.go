package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "railway/internal/config"
	intdb "railway/internal/db"
	"railway/internal/domain"
	api "railway/internal/http"
	"railway/internal/repositories"
	"railway/internal/services"
	"railway/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	utils.SetLogLevel(env.LogLevel)
	log := utils.Logger()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.OpenDB(env)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := intdb.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	trains := repositories.TrainRepository{DB: db}
	if env.SeedTrains {
		n, err := trains.SeedIfEmpty(ctx, repositories.SampleTrains())
		if err != nil {
			cancel()
			log.Fatalf("seed trains: %v", err)
		}
		if n > 0 {
			log.Infof("seeded %d sample trains", n)
		}
	}
	cancel()

	tickets := repositories.NewTicketRepository(db)
	reservations := services.NewReservationService(trains, tickets, nil)
	if env.SMTPHost != "" {
		reservations.Notifier = services.MailNotifier{
			Host:     env.SMTPHost,
			Port:     env.SMTPPort,
			Username: env.SMTPUser,
			Password: env.SMTPPassword,
			From:     env.SMTPFrom,
		}
	}

	auth := services.AuthService{
		Operators: repositories.OperatorRepository{DB: db},
		Secret:    []byte(env.JWTSecret),
		TTL:       env.TokenTTL,
	}
	if env.AdminUsername != "" && env.AdminPassword != "" {
		if err := auth.EnsureOperator(context.Background(), env.AdminUsername, env.AdminPassword, domain.RoleAdmin); err != nil {
			log.Fatalf("seed admin operator: %v", err)
		}
	}

	audit := services.AuditService{Catalog: trains, Ledger: tickets}
	if env.AuditInterval > 0 {
		sched, err := services.StartAuditJob(audit, env.AuditInterval)
		if err != nil {
			log.Fatalf("audit job: %v", err)
		}
		defer func() { _ = sched.Shutdown() }()
	}

	r := api.NewRouter(api.Deps{
		DB:           db,
		Reservations: reservations,
		Auth:         auth,
		Audit:        audit,
		CORSOrigins:  env.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("railway reservation API listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	if err := reservations.Drain(shutdownCtx); err != nil {
		log.Warnf("confirmation mails still pending at exit: %v", err)
	}
	log.Info("server stopped")
}
