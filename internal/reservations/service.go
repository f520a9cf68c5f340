package reservations

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/models"
	"carrete-admin/internal/orders"
	"carrete-admin/internal/store"
)

type Service struct {
	store store.Store
	loc   *time.Location
	log   *zap.Logger
}

func NewService(st store.Store, loc *time.Location, log *zap.Logger) *Service {
	return &Service{store: st, loc: loc, log: log}
}

// Ranking fetches customers and invoices concurrently and aggregates them.
// Either fetch failing fails the whole ranking.
func (s *Service) Ranking(ctx context.Context) ([]Customer, error) {
	var customerRecords, orderRecords []store.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.store.All(gctx, store.CollUsers)
		customerRecords = records
		return err
	})
	g.Go(func() error {
		records, err := s.store.All(gctx, store.CollOrders)
		orderRecords = records
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("load reservations failed", zap.Error(err))
		return nil, apperr.Load("Error al obtener usuarios con reservas", err)
	}

	customers := make([]Customer, 0, len(customerRecords))
	for _, rec := range customerRecords {
		var m models.Customer
		if err := rec.Decode(&m); err != nil {
			s.log.Warn("skipping undecodable customer", zap.String("docId", rec.ID), zap.Error(err))
			continue
		}
		customers = append(customers, FromModel(m))
	}

	invoices := make([]orders.Order, 0, len(orderRecords))
	for _, rec := range orderRecords {
		invoices = append(invoices, orders.Normalize(rec, s.loc))
	}

	ranking := Aggregate(customers, invoices)
	s.log.Debug("reservations aggregated",
		zap.Int("customers", len(customers)),
		zap.Int("orders", len(invoices)),
		zap.Int("ranked", len(ranking)),
	)
	return ranking, nil
}
