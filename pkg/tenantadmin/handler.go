package tenantadmin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/routegrid/tenancy/pkg/catalog"
	"github.com/routegrid/tenancy/pkg/poolcache"
	"github.com/routegrid/tenancy/pkg/provision"
)

// Provisioner is the slice of the provisioning coordinator the admin
// surface exposes.
type Provisioner interface {
	SetupTenant(ctx context.Context, tenantID string) error
}

// Handler serves the administrative endpoints.
type Handler struct {
	pools       *poolcache.Cache
	catalog     *catalog.Catalog
	provisioner Provisioner
	log         *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// New creates the admin handler. provisioner may be nil when the process
// does not perform onboarding; the setup endpoint then responds 501.
func New(pools *poolcache.Cache, cat *catalog.Catalog, provisioner Provisioner, opts ...Option) *Handler {
	h := &Handler{
		pools:       pools,
		catalog:     cat,
		provisioner: provisioner,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the chi subrouter with all admin routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/tenants/pools", h.listPools)
	r.Delete("/tenants/{id}/pool", h.evictPool)
	r.Get("/tenants/{id}/validity", h.validate)
	r.Post("/tenants/{id}/setup", h.setup)
	return r
}

func (h *Handler) listPools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"pools": h.pools.Stats(),
	})
}

func (h *Handler) evictPool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.catalog.IsValidCheap(id) {
		writeError(w, http.StatusBadRequest, "invalid tenant identifier")
		return
	}

	h.pools.Evict(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	valid, err := h.catalog.IsValidAuthoritative(r.Context(), id)
	if err != nil {
		h.log.ErrorContext(r.Context(), "tenant validation failed",
			slog.String("tenant_id", id),
			slog.Any("error", err),
		)
		writeError(w, http.StatusServiceUnavailable, "tenant catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": id,
		"valid":     valid,
	})
}

func (h *Handler) setup(w http.ResponseWriter, r *http.Request) {
	if h.provisioner == nil {
		writeError(w, http.StatusNotImplemented, "provisioning not enabled on this node")
		return
	}

	id := chi.URLParam(r, "id")
	if !h.catalog.IsValidCheap(id) {
		writeError(w, http.StatusBadRequest, "invalid tenant identifier")
		return
	}

	if err := h.provisioner.SetupTenant(r.Context(), id); err != nil {
		var stageErr *provision.StageError
		switch {
		case errors.Is(err, catalog.ErrTenantNotFound):
			writeError(w, http.StatusNotFound, "tenant not found")
		case errors.As(err, &stageErr):
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error": "provisioning failed",
				"stage": string(stageErr.Stage),
				"cause": stageErr.Err.Error(),
			})
		default:
			writeError(w, http.StatusInternalServerError, "provisioning failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id": id,
		"status":    "active",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
