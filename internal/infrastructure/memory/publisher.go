package memory

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/logger"
)

// NoopPublisher logs account events instead of sending them; used in dev
// when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishAccountEvent(ctx context.Context, evt domain.AccountEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("event", string(evt.Type)).
		Int64("account_id", evt.AccountID).
		Msg("noop-pub: account event")
	return nil
}
