package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/signcore/service-auth-go/internal/audit/entity"
)

// Store is the slice of the audit repository the service depends on.
type Store interface {
	Append(ctx context.Context, userID *int64, action string) error
	List(ctx context.Context) ([]*entity.Entry, error)
}

// Service records and lists audit entries. Recording is best-effort: a
// failed append must never fail the operation being audited, so errors are
// logged and swallowed here.
type Service struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewService(store Store, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, logger: logger}
}

// Record appends one entry. userID is nil for actions with no known account.
func (s *Service) Record(ctx context.Context, userID *int64, action string) {
	if err := s.store.Append(ctx, userID, action); err != nil {
		s.logger.Warnw("audit append failed", "action", action, "err", err)
	}
}

// List returns the full audit log, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Entry, error) {
	return s.store.List(ctx)
}
