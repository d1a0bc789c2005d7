package reports

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
	"github.com/meridian-bms/meridian-bms/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	group   singleflight.Group
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/general-ledger/{code}", h.GeneralLedger)
	r.Get("/entity-ledger/{entityType}/{entityId}", h.EntityLedger)
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/income-statement", h.IncomeStatement)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/statements", h.Statements)
}

func (h *Handler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	window, err := parseWindow(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	ledger, err := h.service.GeneralLedger(r.Context(), code, window)
	if err != nil {
		h.logger.Warn("general ledger", slog.String("code", code), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) EntityLedger(w http.ResponseWriter, r *http.Request) {
	entity, err := shared.ParseEntity(chi.URLParam(r, "entityType"), chi.URLParam(r, "entityId"))
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	window, err := parseWindow(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	ledger, err := h.service.EntityLedger(r.Context(), entity, window)
	if err != nil {
		h.logger.Warn("entity ledger", slog.String("entity", entity.String()), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	key := fmt.Sprintf("tb:%d:%d", window.From.Unix(), window.To.Unix())
	result, err := h.collapse(r.Context(), key, func(ctx context.Context) (any, error) {
		return h.service.TrialBalance(ctx, window)
	})
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	key := fmt.Sprintf("pl:%d:%d", window.From.Unix(), window.To.Unix())
	result, err := h.collapse(r.Context(), key, func(ctx context.Context) (any, error) {
		return h.service.IncomeStatement(ctx, window)
	})
	if err != nil {
		h.logger.Error("income statement", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDate(r.URL.Query().Get("as_of"))
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	key := fmt.Sprintf("bs:%d", asOf.Unix())
	result, err := h.collapse(r.Context(), key, func(ctx context.Context) (any, error) {
		return h.service.BalanceSheet(ctx, asOf)
	})
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Statements(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	if window.To.IsZero() {
		window.To = time.Now().UTC()
	}
	statements, err := h.service.BuildStatements(r.Context(), window)
	if err != nil {
		h.logger.Error("statements", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statements)
}

// collapse deduplicates identical concurrent report builds.
func (h *Handler) collapse(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := h.group.DoChan(key, func() (any, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func parseWindow(r *http.Request) (Window, error) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		return Window{}, err
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		return Window{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return Window{}, fmt.Errorf("%w: to before from", shared.ErrValidation)
	}
	return Window{From: from, To: to}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dates must be YYYY-MM-DD", shared.ErrValidation)
	}
	return t, nil
}
