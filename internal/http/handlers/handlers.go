// Package handlers wires HTTP routes to the catalog, ledger and sync engine.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"strafenkasse-service/internal/catalog"
	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/export"
	"strafenkasse-service/internal/ledger"
	"strafenkasse-service/internal/logging"
	"strafenkasse-service/internal/poller"
	"strafenkasse-service/internal/providers"
	"strafenkasse-service/internal/reconcile"
	"strafenkasse-service/internal/timeutil"
)

// Syncer triggers one reconciliation run.
type Syncer interface {
	Run(ctx context.Context) (reconcile.Summary, error)
}

// Handler serves the penalty fund API.
type Handler struct {
	catalog  *catalog.Service
	ledger   *ledger.Service
	syncer   Syncer
	groups   providers.GroupProvider
	logger   *slog.Logger
	statusFn func() poller.Status
}

// New constructs a Handler. Syncer, groups and statusFn may be nil when the
// corresponding feature is not configured.
func New(cat *catalog.Service, lgr *ledger.Service, syncer Syncer, groups providers.GroupProvider, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		catalog:  cat,
		ledger:   lgr,
		syncer:   syncer,
		groups:   groups,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic based on the sync loop's health.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// ListCatalog returns all penalty types in insertion order.
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	types, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "catalog unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": types}, h.logger)
}

type addTypeRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// AddCatalogType creates a new penalty type.
func (h *Handler) AddCatalogType(w http.ResponseWriter, r *http.Request) {
	var req addTypeRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	amount, err := domain.ParseCents(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid amount %q", req.Amount), h.logger)
		return
	}

	entry, err := h.catalog.AddType(r.Context(), req.Name, amount)
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		writeError(w, r, http.StatusConflict, "penalty type already exists", h.logger)
		return
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, r, http.StatusBadRequest, "amount must be positive", h.logger)
		return
	case err != nil:
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	logging.Info(loggerFromContext(r, h.logger), "catalog entry added",
		slog.String("name", entry.Name), slog.String("amount", entry.Amount.String()))
	writeJSON(w, http.StatusCreated, entry, h.logger)
}

// RemoveCatalogType deletes a penalty type; existing records keep their amounts.
func (h *Handler) RemoveCatalogType(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r, h.logger)
	if !ok {
		return
	}
	err := h.catalog.RemoveType(r.Context(), name)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "penalty type not found", h.logger)
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "catalog unavailable", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balances returns every player's open total plus the fund total.
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledger.OpenBalances(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "ledger unavailable", h.logger)
		return
	}
	total, err := h.ledger.TotalOpen(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "ledger unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balances":  balances,
		"totalOpen": total,
	}, h.logger)
}

// PlayerRecords returns one player's penalties, newest first.
func (h *Handler) PlayerRecords(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r, h.logger)
	if !ok {
		return
	}
	records, err := h.ledger.RecordsFor(r.Context(), name)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "ledger unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player":  name,
		"records": records,
	}, h.logger)
}

type assessRequest struct {
	Player string `json:"player"`
	Reason string `json:"reason"`
	Amount string `json:"amount"`
}

// AssessPenalty records a manual penalty. The amount may be omitted when the
// reason names a catalog entry.
func (h *Handler) AssessPenalty(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	amount, err := h.resolveAmount(r.Context(), req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	rec, _, err := h.ledger.Assess(r.Context(), ledger.Assessment{
		Player: req.Player,
		Reason: req.Reason,
		Amount: amount,
		Source: domain.SourceManual,
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	logging.Info(loggerFromContext(r, h.logger), "penalty assessed",
		slog.String(logging.FieldPlayer, rec.Player),
		slog.String("reason", rec.Reason),
		slog.String("amount", rec.Amount.String()),
	)
	writeJSON(w, http.StatusCreated, rec, h.logger)
}

// resolveAmount takes the explicit amount when present, otherwise looks the
// reason up in the catalog.
func (h *Handler) resolveAmount(ctx context.Context, req assessRequest) (domain.Cents, error) {
	if strings.TrimSpace(req.Amount) != "" {
		amount, err := domain.ParseCents(req.Amount)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", req.Amount)
		}
		return amount, nil
	}
	entry, ok, err := h.catalog.Find(ctx, req.Reason)
	if err != nil {
		return 0, errors.New("catalog unavailable")
	}
	if !ok {
		return 0, fmt.Errorf("no catalog entry for %q and no amount given", req.Reason)
	}
	return entry.Amount, nil
}

// MarkPaid settles all open penalties for a player.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	name, ok := pathName(w, r, h.logger)
	if !ok {
		return
	}
	marked, err := h.ledger.MarkPaid(r.Context(), name)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "ledger unavailable", h.logger)
		return
	}

	logging.Info(loggerFromContext(r, h.logger), "penalties settled",
		slog.String(logging.FieldPlayer, name), slog.Int(logging.FieldCount, marked))
	writeJSON(w, http.StatusOK, map[string]any{
		"player": name,
		"marked": marked,
	}, h.logger)
}

// ExportCSV streams the full ledger as a CSV download.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Export(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "ledger unavailable", h.logger)
		return
	}

	filename := fmt.Sprintf("strafenkasse-%s.csv", timeutil.FormatDate(time.Now().UTC()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteCSV(w, records); err != nil {
		logging.Error(loggerFromContext(r, h.logger), "csv export failed", err)
	}
}

// TriggerSync runs the reconciliation engine once and returns its summary.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "sync not configured", h.logger)
		return
	}
	summary, err := h.syncer.Run(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSyncUnavailable) {
			writeError(w, r, http.StatusBadGateway, "scheduling service unavailable", h.logger)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "sync failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}

// Groups lists the scheduling groups the configured account can see.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	if h.groups == nil {
		writeError(w, r, http.StatusServiceUnavailable, "provider not configured", h.logger)
		return
	}
	groups, err := h.groups.FetchGroups(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "scheduling service unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups}, h.logger)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger *slog.Logger) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", logger)
		return false
	}
	return true
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathName extracts and unescapes the {name} route parameter.
func pathName(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(name) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid name", logger)
		return "", false
	}
	return name, true
}
