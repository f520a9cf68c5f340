package orders

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/store"
)

type Service struct {
	store store.Store
	loc   *time.Location
	log   *zap.Logger
}

func NewService(st store.Store, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: st, loc: loc, log: log}
}

// Listing is one filtered view. Total counts the full set so the caller can
// tell "no matches" from "no orders".
type Listing struct {
	Orders   []Order  `json:"orders"`
	Total    int      `json:"total"`
	Matched  int      `json:"matched"`
	Criteria Criteria `json:"criteria"`
}

// Load fetches every invoice and returns the canonical sorted list.
func (s *Service) Load(ctx context.Context) ([]Order, error) {
	records, err := s.store.All(ctx, store.CollOrders)
	if err != nil {
		s.log.Error("load orders failed", zap.Error(err))
		return nil, apperr.Load("Error al cargar los pedidos", err)
	}
	return Load(records, s.loc), nil
}

func (s *Service) List(ctx context.Context, c Criteria) (Listing, error) {
	all, err := s.Load(ctx)
	if err != nil {
		return Listing{}, err
	}

	filtered := Apply(all, c)
	s.log.Debug("orders filtered",
		zap.Int("total", len(all)),
		zap.Int("matched", len(filtered)),
		zap.Bool("filtered", !c.IsZero()),
	)
	return Listing{
		Orders:   filtered,
		Total:    len(all),
		Matched:  len(filtered),
		Criteria: c,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	rec, err := s.store.Get(ctx, store.CollOrders, id)
	if errors.Is(err, store.ErrNotFound) {
		return Order{}, apperr.NotFound("Pedido no encontrado", err)
	}
	if err != nil {
		s.log.Error("load order failed", zap.String("orderId", id), zap.Error(err))
		return Order{}, apperr.Load("Error al cargar el pedido", err)
	}
	return Normalize(rec, s.loc), nil
}
