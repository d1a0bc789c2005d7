package employees

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

// Handler exposes employee CRUD and payroll over JSON.
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
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Post("/payroll", h.RunPayroll)
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
	Salary   string `json:"salary"`
}

type updateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Position *string `json:"position"`
	Salary   *string `json:"salary"`
}

type payrollRequest struct {
	Period  string `json:"period"`
	PayDate string `json:"payDate"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	var salary money.Amount
	if req.Salary != "" {
		var err error
		salary, err = money.Parse(req.Salary, h.cfg.CurrencyExponent)
		if err != nil {
			shared.RespondError(w, fmt.Errorf("%w: salary: %v", shared.ErrValidation, err))
			return
		}
	}
	employee, err := h.service.Create(r.Context(), req.Name, req.Email, req.Position, salary)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid employee id")
		return
	}
	employee, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Search: r.URL.Query().Get("q")}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid employee id")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	in := UpdateInput{Name: req.Name, Email: req.Email, Position: req.Position}
	if req.Salary != nil {
		salary, err := money.Parse(*req.Salary, h.cfg.CurrencyExponent)
		if err != nil {
			shared.RespondError(w, fmt.Errorf("%w: salary: %v", shared.ErrValidation, err))
			return
		}
		in.Salary = &salary
	}
	employee, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid employee id")
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		shared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req payrollRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	payDate, err := time.Parse("2006-01-02", req.PayDate)
	if err != nil {
		shared.RespondError(w, fmt.Errorf("%w: payDate must be YYYY-MM-DD", shared.ErrValidation))
		return
	}
	result, err := h.service.RunPayroll(r.Context(), req.Period, payDate, currentUserID(r))
	if err != nil {
		h.logger.Warn("payroll run", slog.String("period", req.Period), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
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
