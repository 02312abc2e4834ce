package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"gymdesk/internal/auth"
	"gymdesk/internal/inventory/service"
	"gymdesk/internal/permission"
	apperrors "gymdesk/pkg/errors"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type InventoryHandler struct {
	service service.InventoryService
	log     *logger.Logger
}

func NewInventoryHandler(service service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		log:     log,
	}
}

type itemBody struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

type quantityBody struct {
	Quantity int `json:"quantity"`
}

type countBody struct {
	Borrower string `json:"borrower"`
	Count    int    `json:"count"`
}

type repairBody struct {
	Count int    `json:"count"`
	Memo  string `json:"memo"`
}

type repairUpdateBody struct {
	Status    model.RepairStatus `json:"status"`
	AdminMemo string             `json:"admin_memo"`
}

type bulkBody struct {
	Borrower string             `json:"borrower"`
	Lines    []service.BulkLine `json:"lines"`
}

type locationBody struct {
	Location string `json:"location"`
}

type moveBody struct {
	IDs      []model.ID `json:"ids"`
	Location string     `json:"location"`
}

type bulkFunc func(ctx context.Context, actor permission.Actor, borrower string, lines []service.BulkLine) (*service.BulkSummary, error)

func (h *InventoryHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InventoryHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) writeCreated(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteCreated(w, data); err != nil {
		h.log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteList(w, h.service.ListItems()); err != nil {
		h.log.Error("failed to write list response", "handler", "ListItems", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) AddItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "AddItem", err)
		return
	}

	var body itemBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "AddItem", err)
		return
	}

	item, err := h.service.AddItem(r.Context(), actor, body.Name, body.Location, body.Quantity)
	if err != nil {
		h.writeError(w, "AddItem", err)
		return
	}

	h.writeCreated(w, "AddItem", item)
}

func (h *InventoryHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "UpdateQuantity", err)
		return
	}

	var body quantityBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateQuantity", err)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), actor, model.ID(ps.ByName("id")), body.Quantity)
	if err != nil {
		h.writeError(w, "UpdateQuantity", err)
		return
	}

	h.writeSuccess(w, "UpdateQuantity", view)
}

func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "DeleteItem", err)
		return
	}

	id := model.ID(ps.ByName("id"))
	removed, err := h.service.DeleteItem(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, "DeleteItem", err)
		return
	}

	h.writeSuccess(w, "DeleteItem", map[string]any{"id": id, "removed": removed})
}

func (h *InventoryHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := model.ID(ps.ByName("id"))
	available, err := h.service.Available(id)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	h.writeSuccess(w, "Availability", map[string]any{"id": id, "available": available})
}

func (h *InventoryHandler) Rent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "Rent", err)
		return
	}

	var body countBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Rent", err)
		return
	}

	rental, err := h.service.Rent(r.Context(), actor, model.ID(ps.ByName("id")), body.Borrower, body.Count)
	if err != nil {
		h.writeError(w, "Rent", err)
		return
	}

	h.writeCreated(w, "Rent", rental)
}

func (h *InventoryHandler) ReturnPartial(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "ReturnPartial", err)
		return
	}

	var body countBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "ReturnPartial", err)
		return
	}

	result, err := h.service.ReturnPartial(r.Context(), actor, model.ID(ps.ByName("id")), body.Borrower, body.Count)
	if err != nil {
		h.writeError(w, "ReturnPartial", err)
		return
	}

	h.writeSuccess(w, "ReturnPartial", result)
}

func (h *InventoryHandler) RequestRepair(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "RequestRepair", err)
		return
	}

	var body repairBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "RequestRepair", err)
		return
	}

	repair, err := h.service.RequestRepair(r.Context(), actor, model.ID(ps.ByName("id")), body.Count, body.Memo)
	if err != nil {
		h.writeError(w, "RequestRepair", err)
		return
	}

	h.writeCreated(w, "RequestRepair", repair)
}

func (h *InventoryHandler) ReturnFull(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "ReturnFull", err)
		return
	}

	rental, err := h.service.ReturnFull(r.Context(), actor, model.ID(ps.ByName("id")))
	if err != nil {
		h.writeError(w, "ReturnFull", err)
		return
	}

	h.writeSuccess(w, "ReturnFull", rental)
}

func (h *InventoryHandler) ListRentals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	activeOnly := false
	if raw := query.Get("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, "ListRentals", apperrors.InvalidInput(fmt.Sprintf("invalid active parameter: %s", raw)))
			return
		}
		activeOnly = parsed
	}

	if err := httputil.WriteList(w, h.service.ListRentals(query.Get("class"), activeOnly)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListRentals", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) BulkRent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.bulk(w, r, "BulkRent", h.service.BulkRent)
}

func (h *InventoryHandler) BulkReturn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.bulk(w, r, "BulkReturn", h.service.BulkReturn)
}

func (h *InventoryHandler) bulk(w http.ResponseWriter, r *http.Request, name string, run bulkFunc) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	var body bulkBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, name, err)
		return
	}

	summary, err := run(r.Context(), actor, body.Borrower, body.Lines)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	h.writeSuccess(w, name, summary)
}

func (h *InventoryHandler) ListRepairs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var status model.RepairStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := model.ParseRepairStatus(raw)
		if err != nil {
			h.writeError(w, "ListRepairs", apperrors.InvalidInput(fmt.Sprintf("invalid status parameter: %s", raw)))
			return
		}
		status = parsed
	}

	if err := httputil.WriteList(w, h.service.ListRepairs(status)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListRepairs", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) UpdateRepair(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "UpdateRepair", err)
		return
	}

	var body repairUpdateBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateRepair", err)
		return
	}

	repair, err := h.service.UpdateRepairStatus(r.Context(), actor, model.ID(ps.ByName("id")), body.Status, body.AdminMemo)
	if err != nil {
		h.writeError(w, "UpdateRepair", err)
		return
	}

	h.writeSuccess(w, "UpdateRepair", repair)
}

func (h *InventoryHandler) Locations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteList(w, h.service.Locations()); err != nil {
		h.log.Error("failed to write list response", "handler", "Locations", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) AddLocation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "AddLocation", err)
		return
	}

	var body locationBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "AddLocation", err)
		return
	}

	if err := h.service.AddLocation(r.Context(), actor, body.Location); err != nil {
		h.writeError(w, "AddLocation", err)
		return
	}

	if err := httputil.WriteList(w, h.service.Locations()); err != nil {
		h.log.Error("failed to write list response", "handler", "AddLocation", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) DeleteLocation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "DeleteLocation", err)
		return
	}

	location := r.URL.Query().Get("location")
	if location == "" {
		h.writeError(w, "DeleteLocation", apperrors.InvalidInput("location parameter is required"))
		return
	}

	moved, err := h.service.DeleteLocation(r.Context(), actor, location)
	if err != nil {
		h.writeError(w, "DeleteLocation", err)
		return
	}

	h.writeSuccess(w, "DeleteLocation", map[string]any{"location": location, "items_moved": moved})
}

func (h *InventoryHandler) MoveItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "MoveItems", err)
		return
	}

	var body moveBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "MoveItems", err)
		return
	}

	moved, err := h.service.MoveItems(r.Context(), actor, body.IDs, body.Location)
	if err != nil {
		h.writeError(w, "MoveItems", err)
		return
	}

	h.writeSuccess(w, "MoveItems", map[string]any{"location": body.Location, "items_moved": moved})
}

func (h *InventoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/inventory", h.ListItems)
	router.POST("/api/v1/inventory", h.AddItem)
	router.PATCH("/api/v1/inventory/id/:id", h.UpdateQuantity)
	router.DELETE("/api/v1/inventory/id/:id", h.DeleteItem)
	router.GET("/api/v1/inventory/id/:id/availability", h.Availability)
	router.POST("/api/v1/inventory/id/:id/rentals", h.Rent)
	router.POST("/api/v1/inventory/id/:id/partial-return", h.ReturnPartial)
	router.POST("/api/v1/inventory/id/:id/repairs", h.RequestRepair)

	router.GET("/api/v1/rentals", h.ListRentals)
	router.POST("/api/v1/rentals/id/:id/return", h.ReturnFull)
	router.POST("/api/v1/rentals/bulk", h.BulkRent)
	router.POST("/api/v1/returns/bulk", h.BulkReturn)

	router.GET("/api/v1/repairs", h.ListRepairs)
	router.PATCH("/api/v1/repairs/id/:id", h.UpdateRepair)

	router.GET("/api/v1/locations", h.Locations)
	router.POST("/api/v1/locations", h.AddLocation)
	router.DELETE("/api/v1/locations", h.DeleteLocation)
	router.POST("/api/v1/locations/move", h.MoveItems)
}
