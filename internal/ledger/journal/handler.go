package journal

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
	"github.com/meridian-bms/meridian-bms/internal/platform/httpx"
	internalshared "github.com/meridian-bms/meridian-bms/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	cfg     settings.Settings
}

func NewHandler(logger *slog.Logger, service *Service, cfg settings.Settings) *Handler {
	return &Handler{logger: logger, service: service, cfg: cfg}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Post)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/reverse", h.Reverse)
}

type lineRequest struct {
	AccountCode string `json:"accountCode"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
	EntityType  string `json:"entityType,omitempty"`
	EntityID    string `json:"entityId,omitempty"`
}

type postRequest struct {
	Date      string        `json:"date"`
	Memo      string        `json:"memo"`
	RefNo     string        `json:"refNo"`
	Currency  string        `json:"currency"`
	Adjusting bool          `json:"adjusting"`
	Lines     []lineRequest `json:"lines"`
}

type reverseRequest struct {
	Memo string `json:"memo"`
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	input, err := h.toPostingInput(req)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	input.PostedBy = currentUserID(r)

	entry, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.logger.Warn("post journal", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	var req reverseRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
			return
		}
	}
	entry, err := h.service.Reverse(r.Context(), ReverseInput{
		EntryID: id,
		ActorID: currentUserID(r),
		Memo:    req.Memo,
	})
	if err != nil {
		h.logger.Warn("reverse journal", slog.Int64("entry", id), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list journal entries", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) toPostingInput(req postRequest) (PostingInput, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return PostingInput{}, fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation)
	}
	input := PostingInput{
		Date:      date,
		Memo:      req.Memo,
		RefNo:     req.RefNo,
		Currency:  req.Currency,
		Adjusting: req.Adjusting,
	}
	for idx, line := range req.Lines {
		parsed := LineInput{AccountCode: line.AccountCode}
		if line.Debit != "" {
			parsed.Debit, err = money.Parse(line.Debit, h.cfg.CurrencyExponent)
			if err != nil {
				return PostingInput{}, fmt.Errorf("%w: line %d: %v", shared.ErrValidation, idx, err)
			}
		}
		if line.Credit != "" {
			parsed.Credit, err = money.Parse(line.Credit, h.cfg.CurrencyExponent)
			if err != nil {
				return PostingInput{}, fmt.Errorf("%w: line %d: %v", shared.ErrValidation, idx, err)
			}
		}
		if line.EntityType != "" || line.EntityID != "" {
			entity, err := shared.ParseEntity(line.EntityType, line.EntityID)
			if err != nil {
				return PostingInput{}, fmt.Errorf("line %d: %w", idx, err)
			}
			parsed.Entity = &entity
		}
		input.Lines = append(input.Lines, parsed)
	}
	return input, nil
}

func currentUserID(r *http.Request) int64 {
	sess := internalshared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
