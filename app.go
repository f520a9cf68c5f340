package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"carrete-admin/internal/admins"
	"carrete-admin/internal/auth"
	"carrete-admin/internal/config"
	"carrete-admin/internal/database"
	"carrete-admin/internal/identity"
	"carrete-admin/internal/notify"
	"carrete-admin/internal/orders"
	"carrete-admin/internal/reservations"
	"carrete-admin/internal/store"
)

// app holds the wired services and whatever must be released on exit.
type app struct {
	cfg          config.Config
	loc          *time.Location
	store        store.Store
	identity     *identity.Service
	sessions     *auth.Manager
	admins       *admins.Service
	orders       *orders.Service
	reservations *reservations.Service
	closers      []func()
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on exit")
		return store.NewMemory(), func() {}, nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.DBName)
	log.Info("MongoDB connected", zap.String("database", db.Name()))

	for _, err := range database.EnsureIndexes(db, log) {
		log.Warn("index warning", zap.Error(err))
	}

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
	return store.NewMongo(db), closeFn, nil
}

func openMailer(cfg config.Config, log *zap.Logger) (identity.Mailer, func(), error) {
	if cfg.RabbitURL == "" {
		log.Info("RABBIT_URL not set; reset messages are logged")
		return notify.NewLogMailer(log), func() {}, nil
	}
	mailer, err := notify.DialAMQP(cfg.RabbitURL, cfg.ResetQueue, log)
	if err != nil {
		return nil, nil, err
	}
	return mailer, func() {
		if err := mailer.Close(); err != nil {
			log.Warn("rabbitmq close failed", zap.Error(err))
		}
	}, nil
}

// newApp wires every service. withIdentity is false for the read-only CLI
// commands, which need no mailer and no sessions.
func newApp(ctx context.Context, cfg config.Config, log *zap.Logger, withIdentity bool) (*app, error) {
	if withIdentity {
		if err := cfg.ValidateIdentity(); err != nil {
			return nil, err
		}
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, closeStore)

	a.admins = admins.NewService(st, log.Named("admins"))
	a.orders = orders.NewService(st, loc, log.Named("orders"))
	a.reservations = reservations.NewService(st, loc, log.Named("reservations"))

	if !withIdentity {
		return a, nil
	}

	mailer, closeMailer, err := openMailer(cfg, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open mailer: %w", err)
	}
	a.closers = append(a.closers, closeMailer)

	a.identity = identity.NewService(st, identity.Options{
		Secret:     cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
		ResetTTL:   cfg.ResetTokenTTL,
		Mailer:     mailer,
		Logger:     log.Named("identity"),
	})
	a.sessions = auth.NewManager(a.identity, a.admins, log.Named("auth"))
	a.sessions.Start()
	a.closers = append(a.closers, a.sessions.Close)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
