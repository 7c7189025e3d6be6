package invalidation

import (
	"context"
	"log/slog"

	"github.com/example/dscommerce/internal/domain/product"
	"github.com/example/dscommerce/internal/events"
)

// Evictor drops a cached product projection.
type Evictor interface {
	Evict(ctx context.Context, productID int64)
}

// Handler evicts cached products when catalog events arrive. It lets API
// instances that did not perform a write drop their stale entries.
type Handler struct {
	cache Evictor
	log   *slog.Logger
}

func NewHandler(cache Evictor, log *slog.Logger) *Handler {
	return &Handler{cache: cache, log: log.With("component", "invalidator")}
}

// productRef is the field every product event payload shares.
type productRef struct {
	ProductID int64 `json:"product_id"`
}

// HandleEvent processes one message from the catalog topic. Undecodable
// messages are logged and acknowledged, since a retry cannot fix them.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	env, err := events.Decode(value)
	if err != nil {
		h.log.Warn("dropping undecodable message", "key", string(key), "err", err)
		return nil
	}

	switch env.EventType {
	case product.EventProductCreated, product.EventProductUpdated, product.EventProductDeleted:
	default:
		return nil
	}

	ref, err := events.UnwrapPayload[productRef](env)
	if err != nil {
		h.log.Warn("dropping event with bad payload", "event_id", env.EventID, "type", env.EventType, "err", err)
		return nil
	}

	h.cache.Evict(ctx, ref.ProductID)
	h.log.Debug("evicted product", "product_id", ref.ProductID, "type", env.EventType, "event_id", env.EventID)
	return nil
}
