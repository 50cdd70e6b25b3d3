package pos

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const MaxBodyBytes = 1 << 20

// Handler exposes the session as a JSON API for a local counter UI.
type Handler struct {
	logger   apt.Logger
	tlm      *telemetry.HTTP
	session  *Session
	gatherer prometheus.Gatherer
}

type HandlerDeps struct {
	Session  *Session
	Gatherer prometheus.Gatherer
}

func NewHandler(hd HandlerDeps, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return &Handler{
		logger:   logger,
		tlm:      telemetry.NewHTTP(),
		session:  hd.Session,
		gatherer: hd.Gatherer,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.ListCatalog)

	r.Route("/draft", func(r chi.Router) {
		r.Get("/", h.GetDraft)
		r.Delete("/", h.ClearDraft)
		r.Post("/items", h.AddDraftItem)
		r.Put("/location", h.SetDraftLocation)
		r.Post("/park", h.ParkDraft)
		r.Get("/change", h.QuoteDraft)
		r.Post("/pay", h.PayDraft)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/resume", h.ResumeOrder)
		r.Get("/{id}/change", h.QuoteOrder)
		r.Post("/{id}/pay", h.PayOrder)
	})

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.ListSales)
		r.Get("/export", h.ExportSales)
	})

	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
}

// Catalog and draft handlers

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListCatalog")
	defer finish()

	apt.RespondSuccess(w, h.session.Catalog())
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDraft")
	defer finish()

	apt.RespondSuccess(w, h.session.State())
}

func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClearDraft")
	defer finish()

	apt.RespondSuccess(w, h.session.ClearDraft())
}

type AddItemRequest struct {
	CatalogItemID int `json:"catalog_item_id"`
}

func (h *Handler) AddDraftItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddDraftItem")
	defer finish()

	log := h.log(r)

	var req AddItemRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	state, err := h.session.AddItem(req.CatalogItemID)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	apt.RespondSuccess(w, state)
}

type SetLocationRequest struct {
	Location string `json:"location"`
}

func (h *Handler) SetDraftLocation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetDraftLocation")
	defer finish()

	log := h.log(r)

	var req SetLocationRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	state, err := h.session.SetLocation(req.Location)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	apt.RespondSuccess(w, state)
}

func (h *Handler) ParkDraft(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ParkDraft")
	defer finish()

	log := h.log(r)

	order, _, err := h.session.Park(r.Context())
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, order)
}

func (h *Handler) QuoteDraft(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.QuoteDraft")
	defer finish()

	log := h.log(r)

	tendered, ok := h.parseTenderedQuery(w, r, log)
	if !ok {
		return
	}

	apt.RespondSuccess(w, h.session.QuoteDraft(tendered))
}

type PayRequest struct {
	Tendered decimal.Decimal `json:"tendered"`
}

type PayResponse struct {
	Sale   SalesRecord `json:"sale"`
	Change Change      `json:"change"`
}

func (h *Handler) PayDraft(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PayDraft")
	defer finish()

	log := h.log(r)

	var req PayRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	rec, change, err := h.session.PayDraft(r.Context(), req.Tendered)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, PayResponse{Sale: rec, Change: change})
}

// Queue handlers

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	apt.RespondCollection(w, h.session.State().Queue, "order")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.session.FindOrder(id)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	apt.RespondSuccess(w, order)
}

func (h *Handler) ResumeOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ResumeOrder")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	state, err := h.session.Resume(r.Context(), id)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	apt.RespondSuccess(w, state)
}

func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.QuoteOrder")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	tendered, ok := h.parseTenderedQuery(w, r, log)
	if !ok {
		return
	}

	change, err := h.session.Quote(id, tendered)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	apt.RespondSuccess(w, change)
}

func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PayOrder")
	defer finish()

	log := h.log(r)

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req PayRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	rec, change, err := h.session.Pay(r.Context(), id, req.Tendered)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, PayResponse{Sale: rec, Change: change})
}

// Sales handlers

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListSales")
	defer finish()

	log := h.log(r)

	day, ok := h.parseDayQuery(w, r, log)
	if !ok {
		return
	}

	apt.RespondCollection(w, h.session.History(day), "sale")
}

func (h *Handler) ExportSales(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ExportSales")
	defer finish()

	log := h.log(r)

	day, ok := h.parseDayQuery(w, r, log)
	if !ok {
		return
	}

	filename, data, err := h.session.Export(day)
	if err != nil {
		h.respondSessionError(w, log, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("cannot write export", "error", err)
	}
}

// Helpers

func (h *Handler) respondSessionError(w http.ResponseWriter, log apt.Logger, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownProduct):
		log.Debug("rejected request", "error", err)
		apt.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		log.Debug("order not found", "error", err)
		apt.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientPayment):
		log.Debug("payment below total", "error", err)
		apt.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNothingToExport):
		apt.RespondError(w, http.StatusNotFound, err.Error())
	default:
		log.Error("session error", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not complete the operation")
	}
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return 0, false
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}

	return id, true
}

func (h *Handler) parseTenderedQuery(w http.ResponseWriter, r *http.Request, log apt.Logger) (decimal.Decimal, bool) {
	raw := r.URL.Query().Get("tendered")
	tendered, err := ParseAmount(raw)
	if err != nil {
		log.Debug("invalid tendered parameter", "tendered", raw)
		apt.RespondError(w, http.StatusBadRequest, "Invalid tendered parameter")
		return decimal.Zero, false
	}
	return tendered, true
}

func (h *Handler) parseDayQuery(w http.ResponseWriter, r *http.Request, log apt.Logger) (Day, bool) {
	raw := r.URL.Query().Get("date")
	day, err := ParseDay(raw)
	if err != nil {
		log.Debug("invalid date parameter", "date", raw)
		apt.RespondError(w, http.StatusBadRequest, "Invalid date parameter, want YYYY-MM-DD")
		return Day{}, false
	}
	return day, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, log apt.Logger, target interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, target); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}
