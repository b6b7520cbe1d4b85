package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/drag"
	"cmdbgroup/internal/grid"
	"cmdbgroup/internal/mutation"
	"cmdbgroup/internal/snapshot"
)

// InventoryHandler 负责库存分组相关的 HTTP 请求。
type InventoryHandler struct {
	svc    *app.Service
	logger *zap.Logger
}

// NewInventoryHandler 构建一个新的 InventoryHandler。
func NewInventoryHandler(svc *app.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// RegisterRoutes 将库存路由注册到给定的路由组。
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.handleInventory)
	rg.GET("/status", h.handleStatus)
	rg.POST("/drag", h.handleDragStart)
	rg.POST("/drag/cancel", h.handleDragCancel)
	rg.POST("/keys", h.handleKeys)
	rg.POST("/drop", h.handleDrop)
	rg.POST("/exclude", h.handleExclude)
	rg.POST("/applications", h.handleCreateApplication)
	rg.POST("/applications/remove", h.handleRemoveApplications)
	rg.POST("/movegroups", h.handleCreateMoveGroup)
	rg.POST("/movegroups/remove", h.handleRemoveMoveGroup)
	rg.POST("/properties", h.handleCreateProperty)
	rg.POST("/properties/values", h.handleAddPropertyValue)
	rg.POST("/properties/assign", h.handleAssignProperty)
	rg.POST("/discard", h.handleDiscard)
	rg.POST("/calculate", h.handleCalculate)
}

type inventoryResponse struct {
	Version     uint64      `json:"version"`
	Fingerprint string      `json:"fingerprint"`
	Optimistic  bool        `json:"optimistic"`
	Inventory   interface{} `json:"inventory"`
}

func entryResponse(e snapshot.Entry) inventoryResponse {
	return inventoryResponse{Version: e.Version, Fingerprint: e.Fingerprint, Optimistic: e.Optimistic, Inventory: e.Model}
}

func (h *InventoryHandler) handleInventory(c *gin.Context) {
	entry, err := h.svc.Inventory(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entryResponse(entry))
}

func (h *InventoryHandler) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

type dragResponse struct {
	Intent drag.Intent `json:"intent"`
	IDs    []string    `json:"ids"`
}

func (h *InventoryHandler) handleDragStart(c *gin.Context) {
	var req grid.StartEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	g, err := h.svc.Grid.DragStart(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dragResponse{Intent: g.Intent, IDs: g.IDs})
}

func (h *InventoryHandler) handleDragCancel(c *gin.Context) {
	h.svc.Grid.Cancel()
	c.Status(http.StatusNoContent)
}

type keyRequest struct {
	Key  drag.Key `json:"key"`
	Down bool     `json:"down"`
}

func (h *InventoryHandler) handleKeys(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	var (
		intent drag.Intent
		active bool
	)
	if req.Down {
		intent, active = h.svc.Grid.KeyDown(req.Key)
	} else {
		intent, active = h.svc.Grid.KeyUp(req.Key)
	}
	if !active {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "intent": intent})
}

func (h *InventoryHandler) handleDrop(c *gin.Context) {
	var req grid.DropEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	res, err := h.svc.Drop(c.Request.Context(), req)
	if errors.Is(err, app.ErrDropRejected) {
		c.JSON(http.StatusOK, gin.H{"rejected": true})
		return
	}
	h.respond(c, res, err)
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type excludeRequest struct {
	IDs     []string `json:"ids"`
	Exclude *bool    `json:"exclude"`
}

func (h *InventoryHandler) handleExclude(c *gin.Context) {
	var req excludeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids payload is empty"})
		return
	}
	exclude := req.Exclude == nil || *req.Exclude
	res, err := h.svc.ActionFlow.Exclude(c.Request.Context(), req.IDs, exclude)
	h.respond(c, res, err)
}

type removeApplicationsRequest struct {
	Mode           mutation.RemoveMode `json:"mode"`
	IDs            []string            `json:"ids"`
	ApplicationIDs []string            `json:"application_ids"`
}

func (h *InventoryHandler) handleRemoveApplications(c *gin.Context) {
	var req removeApplicationsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids payload is empty"})
		return
	}
	res, err := h.svc.ActionFlow.RemoveFromApplications(c.Request.Context(), req.Mode, req.IDs, req.ApplicationIDs)
	h.respond(c, res, err)
}

func (h *InventoryHandler) handleRemoveMoveGroup(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids payload is empty"})
		return
	}
	res, err := h.svc.ActionFlow.RemoveFromMoveGroup(c.Request.Context(), req.IDs)
	h.respond(c, res, err)
}

type assignRequest struct {
	IDs        []string `json:"ids"`
	PropertyID string   `json:"property_id"`
	Value      string   `json:"value"`
}

func (h *InventoryHandler) handleAssignProperty(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids and property_id are required"})
		return
	}
	res, err := h.svc.ActionFlow.AssignProperty(c.Request.Context(), req.IDs, req.PropertyID, req.Value)
	h.respond(c, res, err)
}

type propertyValueRequest struct {
	PropertyID string `json:"property_id"`
	Value      string `json:"value"`
}

func (h *InventoryHandler) handleAddPropertyValue(c *gin.Context) {
	var req propertyValueRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
		return
	}
	res, err := h.svc.ActionFlow.AddPropertyValue(c.Request.Context(), req.PropertyID, req.Value)
	h.respond(c, res, err)
}

type createPropertyRequest struct {
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

func (h *InventoryHandler) handleCreateProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	prop, res, err := h.svc.ActionFlow.CreateProperty(c.Request.Context(), req.Title, req.Values)
	h.respondCreated(c, prop, res, err)
}

type createGroupRequest struct {
	Name string   `json:"name"`
	IDs  []string `json:"ids"`
}

func (h *InventoryHandler) handleCreateApplication(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	created, res, err := h.svc.ActionFlow.CreateApplication(c.Request.Context(), req.Name, req.IDs)
	h.respondCreated(c, created, res, err)
}

func (h *InventoryHandler) handleCreateMoveGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	created, res, err := h.svc.ActionFlow.CreateMoveGroup(c.Request.Context(), req.Name, req.IDs)
	h.respondCreated(c, created, res, err)
}

func (h *InventoryHandler) handleDiscard(c *gin.Context) {
	entry, err := h.svc.Discard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entryResponse(entry))
}

func (h *InventoryHandler) handleCalculate(c *gin.Context) {
	if err := h.svc.RunFlow.Run(c.Request.Context()); err != nil {
		if errors.Is(err, app.ErrAlreadyCalculating) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.svc.Status())
}

func (h *InventoryHandler) respond(c *gin.Context, res mutation.Result, err error) {
	if err != nil {
		h.failWithResult(c, res, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

func (h *InventoryHandler) respondCreated(c *gin.Context, created interface{}, res mutation.Result, err error) {
	if err != nil {
		h.failWithResult(c, res, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"result": res, "created": created})
}

func (h *InventoryHandler) failWithResult(c *gin.Context, res mutation.Result, err error) {
	if status, msg, ok := app.SaveFailure(err); ok {
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": msg, "result": res})
		return
	}
	h.fail(c, err)
}

func (h *InventoryHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, grid.ErrNoActiveDrag), errors.Is(err, grid.ErrNotDropTarget):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("inventory request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
