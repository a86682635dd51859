package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "railway/internal/config"
	"railway/internal/console"
	intdb "railway/internal/db"
	"railway/internal/repositories"
	"railway/internal/services"
	"railway/internal/utils"
)

func main() {
	env := intconfig.LoadEnv()
	// Menu output goes to stdout; keep log lines to warnings unless asked otherwise.
	if os.Getenv("LOG_LEVEL") == "" {
		env.LogLevel = "warn"
	}
	utils.SetLogLevel(env.LogLevel)
	log := utils.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var svc *services.ReservationService
	switch env.Store {
	case "memory":
		store := repositories.NewMemoryStore(repositories.SampleTrains()...)
		svc = services.NewReservationService(store, store, nil)
	case "mysql":
		db, err := intconfig.OpenDB(env)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()

		setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := intdb.Migrate(setupCtx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		trains := repositories.TrainRepository{DB: db}
		if env.SeedTrains {
			if _, err := trains.SeedIfEmpty(setupCtx, repositories.SampleTrains()); err != nil {
				log.Fatalf("seed trains: %v", err)
			}
		}
		svc = services.NewReservationService(trains, repositories.NewTicketRepository(db), nil)
	default:
		log.Fatalf("unknown STORE %q (want mysql or memory)", env.Store)
	}

	if env.SMTPHost != "" {
		svc.Notifier = services.MailNotifier{
			Host:     env.SMTPHost,
			Port:     env.SMTPPort,
			Username: env.SMTPUser,
			Password: env.SMTPPassword,
			From:     env.SMTPFrom,
		}
	}

	if err := console.New(svc, os.Stdin, os.Stdout, env.TicketDir).Run(ctx); err != nil {
		log.Errorf("console: %v", err)
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelDrain()
	if err := svc.Drain(drainCtx); err != nil {
		log.Warnf("confirmation mails still pending at exit: %v", err)
	}
}
