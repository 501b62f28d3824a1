package service

import (
	"context"
	"fmt"
	"time"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/report"
	"aminashop/backend/internal/state"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const systemActor = "Système"

// Service exposes one method per business operation. Every write computes
// its action from the latest document inside state.Store.Apply.
type Service struct {
	store   *state.Store
	reports *report.Engine
	now     func() time.Time
	newID   func(prefix string) string
}

func New(st *state.Store, reports *report.Engine) *Service {
	if reports == nil {
		reports = report.NewEngine(nil, 0)
	}

	return &Service{
		store:   st,
		reports: reports,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   xid.New,
	}
}

// apply runs plan against the latest document after the permission check.
func (s *Service) apply(ctx context.Context, perm domain.Permission, plan state.Planner) error {
	if err := s.authorize(ctx, perm); err != nil {
		return err
	}
	return s.store.Apply(ctx, plan)
}

// authorize checks the request actor, then the session user. Calls made
// without either run as the system.
func (s *Service) authorize(ctx context.Context, perm domain.Permission) error {
	if perm == "" {
		return nil
	}
	if actor, ok := ActorFromContext(ctx); ok {
		if !actor.Role.Can(perm) {
			return fmt.Errorf("%w: %s role cannot use %s", ErrForbidden, actor.Role, perm)
		}
		return nil
	}
	if user, ok := s.store.CurrentUser(); ok && !user.Role.Can(perm) {
		return fmt.Errorf("%w: %s role cannot use %s", ErrForbidden, user.Role, perm)
	}
	return nil
}

func (s *Service) actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.Name != "" {
		return actor.Name
	}
	if user, ok := s.store.CurrentUser(); ok && user.Name != "" {
		return user.Name
	}
	return systemActor
}

func (s *Service) record(ctx context.Context, order *domain.Order, format string, args ...any) {
	order.ModificationHistory = append(order.ModificationHistory, domain.Modification{
		Date:        s.now(),
		User:        s.actorName(ctx),
		Description: fmt.Sprintf(format, args...),
	})
}

// Version is the number of committed changes since startup.
func (s *Service) Version() uint64 {
	return s.store.Version()
}

func (s *Service) snapshot() domain.Document {
	doc, _ := s.store.Snapshot()
	return doc
}

func findOrder(doc domain.Document, id string) (domain.Order, error) {
	order, ok := doc.Order(id)
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
	}
	return order.Clone(), nil
}

func findPurchaseOrder(doc domain.Document, id string) (domain.PurchaseOrder, error) {
	po, ok := doc.PurchaseOrder(id)
	if !ok {
		return domain.PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", id, store.ErrNotFound)
	}
	return po.Clone(), nil
}

func formatAmount(amount int64) string {
	return fmt.Sprintf("%d FCFA", amount)
}
