package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/dscommerce/internal/api/middleware"
	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/authz"
	"github.com/example/dscommerce/internal/command"
	"github.com/example/dscommerce/internal/outcome"
	"github.com/example/dscommerce/internal/query"
	"github.com/example/dscommerce/internal/readmodel"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	log          *slog.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, log *slog.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		log:          log.With("component", "api"),
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	h.respondOutcome(w, r, h.queryHandler.ListProducts(r.Context(), identity(r), query.ListProducts{
		Name: q.Get("name"),
		Page: page,
		Size: size,
		Sort: q.Get("sort"),
	}))
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	h.respondOutcome(w, r, h.queryHandler.GetProduct(r.Context(), identity(r), pathID(r)))
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	who := identity(r)

	var cmd command.CreateProduct
	if !h.decode(w, r, who, authz.ProductCreate, &cmd.Input) {
		return
	}

	o := h.cmdHandler.CreateProduct(r.Context(), who, cmd)
	if o.Kind == outcome.KindCreated {
		if p, ok := o.Payload.(*readmodel.ProductReadModel); ok {
			w.Header().Set("Location", fmt.Sprintf("/products/%d", p.ID))
		}
	}
	h.respondOutcome(w, r, o)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	who := identity(r)

	cmd := command.UpdateProduct{ProductID: pathID(r)}
	if !h.decode(w, r, who, authz.ProductUpdate, &cmd.Input) {
		return
	}

	h.respondOutcome(w, r, h.cmdHandler.UpdateProduct(r.Context(), who, cmd))
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteProduct{ProductID: pathID(r)}
	h.respondOutcome(w, r, h.cmdHandler.DeleteProduct(r.Context(), identity(r), cmd))
}

// Order Handlers

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.respondOutcome(w, r, h.queryHandler.GetOrder(r.Context(), identity(r), pathID(r)))
}

// decode reads the JSON body into dst. An unreadable body is reported only
// after the caller has passed the identity checks of op, so an anonymous
// caller still gets 401 rather than 400.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, who auth.Identity, op authz.Operation, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	if denied := outcome.DenialError(authz.Authorize(who, op, nil)); denied != nil {
		h.respondOutcome(w, r, outcome.Fail(denied))
		return false
	}
	respondJSONError(w, r, http.StatusBadRequest, "Malformed request body")
	return false
}

func identity(r *http.Request) auth.Identity {
	return middleware.IdentityFrom(r.Context())
}

// pathID parses the {id} URL parameter. A malformed id becomes 0, which
// matches no resource, so the usual check order still decides the response.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
