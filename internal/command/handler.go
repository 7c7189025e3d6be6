package command

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/authz"
	"github.com/example/dscommerce/internal/domain/product"
	"github.com/example/dscommerce/internal/events"
	"github.com/example/dscommerce/internal/infrastructure/store"
	"github.com/example/dscommerce/internal/outcome"
	"github.com/example/dscommerce/internal/readmodel"
	"github.com/example/dscommerce/internal/validation"
)

// Producer names this service in published event envelopes.
const Producer = "dscommerce-api"

// Handler runs product mutations. Every method evaluates its checks in a
// fixed order and returns the first failure; storage is touched only after
// the caller has been authorized.
type Handler struct {
	products store.ProductStore
	events   events.Publisher
	log      *slog.Logger
	now      func() time.Time
}

func NewHandler(products store.ProductStore, pub events.Publisher, log *slog.Logger) *Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handler{
		products: products,
		events:   pub,
		log:      log.With("component", "command"),
		now:      time.Now,
	}
}

// CreateProduct: authenticated, admin, valid payload.
func (h *Handler) CreateProduct(ctx context.Context, who auth.Identity, cmd CreateProduct) outcome.Outcome {
	return outcome.Pipeline{
		outcome.Authorized(who, authz.ProductCreate),
		validate(cmd.Input),
	}.Run(ctx, func(ctx context.Context) outcome.Outcome {
		p, err := h.products.CreateProduct(ctx, cmd.Input)
		if err != nil {
			return storeFailure(err)
		}

		h.publish(ctx, product.EventProductCreated, p.ID, product.ProductCreated{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			CategoryIDs: cmd.CategoryIDs(),
			CreatedBy:   who.SubjectID,
			CreatedAt:   h.now().UTC(),
		})
		return outcome.Created(readmodel.FromProduct(p))
	})
}

// UpdateProduct: authenticated, admin, product exists, valid payload.
func (h *Handler) UpdateProduct(ctx context.Context, who auth.Identity, cmd UpdateProduct) outcome.Outcome {
	return outcome.Pipeline{
		outcome.Authorized(who, authz.ProductUpdate),
		h.exists(cmd.ProductID),
		validate(cmd.Input),
	}.Run(ctx, func(ctx context.Context) outcome.Outcome {
		p, ok, err := h.products.UpdateProduct(ctx, cmd.ProductID, cmd.Input)
		if err != nil {
			return storeFailure(err)
		}
		if !ok {
			return outcome.Fail(outcome.ErrNotFound)
		}

		h.publish(ctx, product.EventProductUpdated, p.ID, product.ProductUpdated{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			CategoryIDs: cmd.CategoryIDs(),
			UpdatedBy:   who.SubjectID,
			UpdatedAt:   h.now().UTC(),
		})
		return outcome.OK(readmodel.FromProduct(p))
	})
}

// DeleteProduct: authenticated, admin, product exists, not referenced by
// any order item. Existence and references are decided by one storage call.
func (h *Handler) DeleteProduct(ctx context.Context, who auth.Identity, cmd DeleteProduct) outcome.Outcome {
	return outcome.Pipeline{
		outcome.Authorized(who, authz.ProductDelete),
	}.Run(ctx, func(ctx context.Context) outcome.Outcome {
		res, err := h.products.TryDeleteProduct(ctx, cmd.ProductID)
		if err != nil {
			return outcome.Fail(err)
		}

		switch res {
		case store.DeleteNotFound:
			return outcome.Fail(outcome.ErrNotFound)
		case store.DeleteReferenced:
			return outcome.Fail(outcome.ErrDependentResource)
		}

		h.publish(ctx, product.EventProductDeleted, cmd.ProductID, product.ProductDeleted{
			ProductID: cmd.ProductID,
			DeletedBy: who.SubjectID,
			DeletedAt: h.now().UTC(),
		})
		return outcome.NoContent()
	})
}

func (h *Handler) exists(id int64) outcome.Check {
	return func(ctx context.Context) error {
		_, ok, err := h.products.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return outcome.ErrNotFound
		}
		return nil
	}
}

func validate(in product.Input) outcome.Check {
	return func(context.Context) error {
		if v := product.Validate(in); len(v) > 0 {
			return &outcome.ValidationError{Violations: v}
		}
		return nil
	}
}

// storeFailure reports an unknown category as a payload violation and any
// other error as an infrastructure failure.
func storeFailure(err error) outcome.Outcome {
	if errors.Is(err, store.ErrUnknownCategory) {
		return outcome.Invalid([]validation.Violation{{Field: "categories", Message: product.MsgCategoryUnknown}})
	}
	return outcome.Fail(err)
}

// publish is best-effort: the mutation is already committed, so a broker
// failure is logged and the caller still gets its outcome.
func (h *Handler) publish(ctx context.Context, eventType string, productID int64, payload any) {
	key := strconv.FormatInt(productID, 10)
	env, err := events.New(eventType, Producer, events.CorrelationID(ctx), payload)
	if err != nil {
		h.log.Error("build event", "type", eventType, "product_id", productID, "err", err)
		return
	}
	if err := h.events.Publish(ctx, key, env); err != nil {
		h.log.Warn("publish event", "type", eventType, "product_id", productID, "event_id", env.EventID, "err", err)
	}
}
