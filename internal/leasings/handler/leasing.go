package handler

import (
	"encoding/json"
	"net/http"

	"plotlease/internal/leasings/repository"
	"plotlease/internal/leasings/service"
	"plotlease/internal/leasings/validator"
	httputil "plotlease/pkg/http"
	"plotlease/pkg/logger"
	"plotlease/pkg/model"
	"plotlease/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type LeasingHandler struct {
	service      service.LeasingService
	availability service.AvailabilityService
	log          *logger.Logger
}

func NewLeasingHandler(svc service.LeasingService, availability service.AvailabilityService, log *logger.Logger) *LeasingHandler {
	return &LeasingHandler{
		service:      svc,
		availability: availability,
		log:          log,
	}
}

func (h *LeasingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validator.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	leasing, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, leasing); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *LeasingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	leasing, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, leasing); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

type statusUpdateRequest struct {
	Status  model.LeasingStatus `json:"status"`
	ActorID string              `json:"actor_id"`
}

func (h *LeasingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	leasing, err := h.service.UpdateStatus(r.Context(), id, req.ActorID, req.Status)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, leasing); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LeasingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	actorID := r.URL.Query().Get("actor_id")

	if err := h.service.Delete(r.Context(), id, actorID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// List serves the scoped listing: scope selects whether id refers to a plot,
// a renting user or an owning user; status, from/to containment and the
// temporal bucket are optional and compose conjunctively.
func (h *LeasingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	scope := repository.Scope(query.Get("scope"))
	refID := query.Get("id")
	if scope == "" || refID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Both 'scope' and 'id' query parameters are required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "List", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	from, err := httputil.ExtractTimeParam(r, "from")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	to, err := httputil.ExtractTimeParam(r, "to")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter := repository.ListFilter{
		From:   from,
		To:     to,
		Bucket: repository.Bucket(query.Get("bucket")),
	}
	for _, s := range sanitizer.NormalizeStatuses(query["status"]) {
		filter.Statuses = append(filter.Statuses, model.LeasingStatus(s))
	}

	leasings, total, err := h.service.List(r.Context(), scope, refID, filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, leasings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

type availabilityResponse struct {
	PlotID   string `json:"plot_id"`
	Bookable bool   `json:"bookable"`
}

func (h *LeasingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plotID := ps.ByName("id")

	from, err := httputil.ExtractRequiredTimeParam(r, "from")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	to, err := httputil.ExtractRequiredTimeParam(r, "to")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bookable, err := h.availability.IsBookable(r.Context(), plotID, from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availabilityResponse{PlotID: plotID, Bookable: bookable}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LeasingHandler) LeasedRanges(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plotID := ps.ByName("id")

	from, err := httputil.ExtractTimeParam(r, "from")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "LeasedRanges", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	to, err := httputil.ExtractTimeParam(r, "to")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "LeasedRanges", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	ranges, err := h.availability.LeasedRanges(r.Context(), plotID, from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "LeasedRanges", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ranges); err != nil {
		h.log.Error("failed to write success response", "handler", "LeasedRanges", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LeasingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/leasings", h.Create)
	router.GET("/api/v1/leasings", h.List)
	router.GET("/api/v1/leasings/id/:id", h.GetByID)
	router.PATCH("/api/v1/leasings/id/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/leasings/id/:id", h.Delete)
	router.GET("/api/v1/plots/:id/availability", h.Availability)
	router.GET("/api/v1/plots/:id/leased-ranges", h.LeasedRanges)
}
