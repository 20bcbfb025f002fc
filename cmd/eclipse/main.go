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

	"github.com/EXP1111/eclipse/internal/app"
	"github.com/EXP1111/eclipse/internal/audit"
	"github.com/EXP1111/eclipse/internal/clock"
	"github.com/EXP1111/eclipse/internal/config"
	"github.com/EXP1111/eclipse/internal/gateway"
	"github.com/EXP1111/eclipse/internal/storage/postgres"
	transporthttp "github.com/EXP1111/eclipse/internal/transport/http"
	"github.com/EXP1111/eclipse/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	stan "github.com/nats-io/stan.go"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	gw := gateway.NewRestClient(cfg.GatewayBaseURL, cfg.Token)

	sinks := audit.Fanout{audit.NewChannelSink(gw, cfg.LogChannelID, logger)}
	if cfg.NatsURL != "" {
		sc, err := stan.Connect(cfg.StanClusterID, cfg.StanClientID, stan.NatsURL(cfg.NatsURL))
		if err != nil {
			log.Fatalf("stan connect: %v", err)
		}
		defer sc.Close()
		sinks = append(sinks, audit.NewStreamSink(sc, cfg.StanSubject, logger))
	}

	inventoryRepo := postgres.NewInventoryRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	storefront := app.NewStorefront(
		inventoryRepo, settingsRepo, gw,
		cfg.StorefrontChannelID, cfg.StoreName, cfg.Currency,
		cfg.RefreshInterval, logger,
	)

	inventorySvc := app.NewInventoryService(inventoryRepo,
		app.WithInventoryRefresher(storefront))
	orderSvc := app.NewOrderService(orderRepo, gw, clock.NewSystem(),
		app.WithAuditor(sinks),
		app.WithOrderLogger(logger),
		app.WithOrderRefresher(storefront))
	ticketSvc := app.NewTicketService(ticketRepo, gw, clock.NewSystem(), cfg.TicketCategoryID,
		app.WithStaffRole(cfg.StaffRoleID),
		app.WithTicketAuditor(sinks),
		app.WithTicketLogger(logger))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go storefront.Run(runCtx)

	handler := transporthttp.NewRouter(inventorySvc, orderSvc, ticketSvc, storefront, logger)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("eclipse ops api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-runCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}
