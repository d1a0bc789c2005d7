package billing

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
	"github.com/meridian-bms/meridian-bms/internal/platform/httpx"
	internalshared "github.com/meridian-bms/meridian-bms/internal/shared"
)

// Handler exposes invoices and payments over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cfg     settings.Settings
}

func NewHandler(logger *slog.Logger, service *Service, cfg settings.Settings) *Handler {
	return &Handler{logger: logger, service: service, cfg: cfg}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.ListInvoices)
		r.Post("/", h.IssueInvoice)
		r.Get("/{id}", h.GetInvoice)
		r.Get("/{id}/payments", h.ListPayments)
		r.Post("/{id}/payments", h.RecordPayment)
	})
}

type issueRequest struct {
	ClientID   string `json:"clientId"`
	Date       string `json:"date"`
	DueDate    string `json:"dueDate"`
	Amount     string `json:"amount"`
	TaxPercent int    `json:"taxPercent"`
}

type paymentRequest struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Method string `json:"method"`
}

func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		shared.RespondError(w, fmt.Errorf("%w: invalid client id", shared.ErrValidation))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		shared.RespondError(w, fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation))
		return
	}
	dueDate := date
	if req.DueDate != "" {
		dueDate, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			shared.RespondError(w, fmt.Errorf("%w: dueDate must be YYYY-MM-DD", shared.ErrValidation))
			return
		}
	}
	amount, err := money.Parse(req.Amount, h.cfg.CurrencyExponent)
	if err != nil {
		shared.RespondError(w, fmt.Errorf("%w: amount: %v", shared.ErrValidation, err))
		return
	}

	invoice, err := h.service.IssueInvoice(r.Context(), IssueInput{
		ClientID:   clientID,
		Date:       date,
		DueDate:    dueDate,
		Amount:     amount,
		TaxPercent: req.TaxPercent,
	}, currentUserID(r))
	if err != nil {
		h.logger.Warn("issue invoice", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	invoice, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	var clientID *uuid.UUID
	if v := r.URL.Query().Get("clientId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid client id")
			return
		}
		clientID = &id
	}
	list, err := h.service.ListInvoices(r.Context(), clientID)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		shared.RespondError(w, fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation))
		return
	}
	amount, err := money.Parse(req.Amount, h.cfg.CurrencyExponent)
	if err != nil {
		shared.RespondError(w, fmt.Errorf("%w: amount: %v", shared.ErrValidation, err))
		return
	}
	method := MethodBank
	if req.Method != "" {
		method = PaymentMethod(req.Method)
	}

	payment, err := h.service.RecordPayment(r.Context(), PaymentInput{
		InvoiceID: invoiceID,
		Date:      date,
		Amount:    amount,
		Method:    method,
	}, currentUserID(r))
	if err != nil {
		h.logger.Warn("record payment", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	payments, err := h.service.ListPayments(r.Context(), invoiceID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
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
