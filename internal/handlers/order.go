// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/balaguruva/admin-backend/internal/i18n"
	"github.com/balaguruva/admin-backend/internal/services"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GET /api/orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	scope, ok := callerScope(c)
	if !ok {
		return
	}
	h.listOrders(c, scope)
}

// GET /api/orders/admin/all
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	h.listOrders(c, services.OrderScope{})
}

func (h *OrderHandler) listOrders(c *gin.Context, scope services.OrderScope) {
	params, paged := utils.GetPaginationParams(c)
	var page *utils.PaginationParams
	if paged {
		page = &params
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), scope, page)
	if err != nil {
		respondError(c, err)
		return
	}

	if paged {
		utils.PaginatedResponse(c, orders, utils.CreatePaginationResult(total, params))
		return
	}
	utils.SuccessResponse(c, orders)
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	scope, ok := callerScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c, i18n.KeyOrderInvalidID)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// POST /api/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userIDStr, _ := utils.GetUserIDFromContext(c)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// PUT /api/orders/:id/status
func (h *OrderHandler) UpdateMyOrderStatus(c *gin.Context) {
	scope, ok := callerScope(c)
	if !ok {
		return
	}
	h.updateStatus(c, scope)
}

// PUT /api/orders/admin/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	h.updateStatus(c, services.OrderScope{})
}

func (h *OrderHandler) updateStatus(c *gin.Context, scope services.OrderScope) {
	id, ok := parseID(c, i18n.KeyOrderInvalidID)
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, changed, err := h.orderService.UpdateStatus(c.Request.Context(), scope, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, i18n.KeyOrderStatusUpdated, gin.H{
		"order":   order,
		"changed": changed,
	})
}

// callerScope limits regular users to their own orders; admins see all.
func callerScope(c *gin.Context) (services.OrderScope, bool) {
	if role, _ := utils.GetRoleFromContext(c); role == utils.RoleAdmin {
		return services.OrderScope{}, true
	}

	userIDStr, _ := utils.GetUserIDFromContext(c)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return services.OrderScope{}, false
	}
	return services.OrderScope{UserID: &userID}, true
}
