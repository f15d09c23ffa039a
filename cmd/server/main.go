// Command server runs the visitor gate API. It wires configuration, storage,
// messaging and the HTTP surface, then blocks until shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visitgate/internal/audit"
	"visitgate/internal/badge"
	"visitgate/internal/company"
	"visitgate/internal/dashboard"
	"visitgate/internal/device"
	"visitgate/internal/directory"
	"visitgate/internal/employee"
	"visitgate/internal/location"
	"visitgate/internal/notify"
	"visitgate/internal/otp"
	"visitgate/internal/platform/config"
	"visitgate/internal/platform/httpserver"
	"visitgate/internal/platform/kafka"
	"visitgate/internal/platform/logger"
	"visitgate/internal/platform/metrics"
	"visitgate/internal/platform/postgres"
	"visitgate/internal/platform/redis"
	httptransport "visitgate/internal/transport/http"
	"visitgate/internal/visit"
	visithandler "visitgate/internal/visit/handler"
	"visitgate/internal/visit/service"
)

const outboxInterval = 5 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// stores groups the per-feature persistence selected at startup.
type stores struct {
	visits      visit.Store
	companies   company.Store
	employees   employee.Store
	locations   location.Store
	attachments badge.Store
	devices     device.Store
	audit       audit.Store

	// auditPG is non-nil only in Postgres mode; the outbox worker needs it.
	auditPG *audit.PostgresStore
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	st, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	} else {
		log.Warn("redis not configured, OTP throttling disabled")
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		log.Info("kafka connected", "brokers", cfg.Kafka.Brokers)
	} else {
		log.Warn("kafka not configured, realtime notifications disabled")
	}

	var throttle service.Throttle
	if redisClient != nil {
		throttle = otp.NewThrottle(redisClient, cfg.OTP.MaxSends, cfg.OTP.SendWindow)
	} else {
		throttle = otp.NewThrottle(nil, 0, 0)
	}

	var realtime service.RealtimeNotifier
	if producer != nil {
		realtime = notify.NewKafkaNotifier(producer, cfg.Kafka.NotificationTopic, log)
	} else {
		realtime = notify.NewInMemoryNotifier()
	}

	var renderer badge.Renderer
	if cfg.Badge.RendererURL != "" {
		renderer = badge.NewHTTPRenderer(cfg.Badge)
	} else {
		log.Warn("badge renderer not configured, using builtin passes")
		renderer = badge.FallbackRenderer{}
	}

	m := metrics.New()
	auditor := audit.NewPublisher(st.audit, log)

	svc := service.New(service.Deps{
		Visits:      st.visits,
		Locations:   st.locations,
		Employees:   st.employees,
		Companies:   st.companies,
		Attachments: st.attachments,
		Renderer:    renderer,
		Tokens:      badge.NewTokenService(cfg.Badge),
		Devices:     device.NewRegistry(st.devices),
		SMS:         notify.NewRouteMobileClient(cfg.SMS),
		Email:       notify.NewSMTPMailer(cfg.SMTP),
		Realtime:    realtime,
		Throttle:    throttle,
		Audit:       auditor,
		Metrics:     m,
		Logger:      log,
		BaseURL:     cfg.BaseURL,
	})

	router := httptransport.NewRouter(log, m,
		visithandler.New(svc, log),
		dashboard.NewHandler(dashboard.New(st.visits)),
		directory.New(st.employees, st.companies, st.locations),
		device.NewHandler(device.NewRegistry(st.devices)),
	)

	// The audit outbox drains to Kafka only when both sides exist.
	if st.auditPG != nil && producer != nil {
		worker := audit.NewOutboxWorker(st.auditPG, producer, cfg.Kafka.AuditTopic, outboxInterval, log)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit outbox worker stopped", "error", err)
			}
		}()
	}

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStores picks Postgres-backed stores when a database URL is configured
// and in-memory stores otherwise. The in-memory mode exists for local
// development and loses everything on restart.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, func(), error) {
	if cfg.Postgres.URL == "" {
		log.Warn("postgres not configured, using in-memory stores")
		return &stores{
			visits:      visit.NewInMemoryStore(),
			companies:   company.NewInMemoryStore(),
			employees:   employee.NewInMemoryStore(),
			locations:   location.NewInMemoryStore(),
			attachments: badge.NewInMemoryStore(),
			devices:     device.NewInMemoryStore(),
			audit:       audit.NewInMemoryStore(),
		}, func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}

	visits := visit.NewPostgresStore(db)
	companies := company.NewPostgresStore(db)
	employees := employee.NewPostgresStore(db)
	locations := location.NewPostgresStore(db)
	attachments := badge.NewPostgresStore(db)
	devices := device.NewPostgresStore(db)
	auditStore := audit.NewPostgresStore(db)

	for _, ensure := range []func(context.Context) error{
		companies.EnsureSchema,
		locations.EnsureSchema,
		employees.EnsureSchema,
		visits.EnsureSchema,
		attachments.EnsureSchema,
		devices.EnsureSchema,
		auditStore.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	log.Info("postgres connected")

	return &stores{
		visits:      visits,
		companies:   companies,
		employees:   employees,
		locations:   locations,
		attachments: attachments,
		devices:     devices,
		audit:       auditStore,
		auditPG:     auditStore,
	}, func() { db.Close() }, nil
}
