package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/api/middleware"
	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/service"
)

// EditResponse is returned by POST /orders/edit
type EditResponse struct {
	Order   *domain.Order            `json:"order"`
	Added   []string                 `json:"added"`
	Skipped []string                 `json:"skipped"`
	Removed []domain.RemovedLineItem `json:"removed"`
}

// FulfillResponse is returned by the fulfillment endpoints
type FulfillResponse struct {
	Order  *domain.Order `json:"order"`
	Marked []string      `json:"fulfilled_line_items"`
}

type importRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// HandleEditOrder handles POST /api/v1/orders/edit
func HandleEditOrder(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload domain.EditPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}

		result, err := orders.Edit(c.Request.Context(), payload, middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, EditResponse{
			Order:   result.Order,
			Added:   nonNil(result.Added),
			Skipped: nonNil(result.Skipped),
			Removed: result.Removed,
		})
	}
}

// HandleImportOrder handles POST /api/v1/orders/import
func HandleImportOrder(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req importRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}

		order, created, err := orders.Import(c.Request.Context(), strings.TrimSpace(req.OrderID), middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		status := http.StatusCreated
		if !created {
			status = http.StatusOK
		}
		respondOK(c, status, order)
	}
}

// HandleFulfill handles POST /api/v1/orders/fulfill
func HandleFulfill(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.FulfillmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}

		result, err := orders.Fulfill(c.Request.Context(), req, middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, FulfillResponse{Order: result.Order, Marked: nonNil(result.Marked)})
	}
}

// HandleFulfillSingle handles POST /api/v1/orders/fulfill/single
func HandleFulfillSingle(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.SingleFulfillmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}

		result, err := orders.FulfillSingle(c.Request.Context(), req, middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, FulfillResponse{Order: result.Order, Marked: nonNil(result.Marked)})
	}
}

// HandleFulfillRemaining handles POST /api/v1/orders/:id/fulfill-remaining
func HandleFulfillRemaining(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := orders.FulfillRemaining(c.Request.Context(), c.Param("id"), middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, FulfillResponse{Order: result.Order, Marked: nonNil(result.Marked)})
	}
}

// HandleCancelOrder handles POST /api/v1/orders/:id/cancel. The body is optional.
func HandleCancelOrder(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}

		order, err := orders.Cancel(c.Request.Context(), c.Param("id"), req, middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, order)
	}
}

// HandleMarkPaid handles POST /api/v1/orders/:id/mark-paid
func HandleMarkPaid(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.StatusUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
		if _, ok := domain.ParseFinancialStatus(req.FinancialStatus); !ok {
			respondBadRequest(c, "financial_status is required")
			return
		}

		order, err := orders.MarkPaid(c.Request.Context(), c.Param("id"), req, middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, order)
	}
}

// HandleDeleteOrder handles DELETE /api/v1/orders/:id
func HandleDeleteOrder(orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := orders.SoftDelete(c.Request.Context(), c.Param("id"), middleware.Actor(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, result)
	}
}

// HandleListOrders handles GET /api/v1/orders
func HandleListOrders(queries service.OrderQueries, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q service.ListOrdersQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			respondBadRequest(c, "invalid query: "+err.Error())
			return
		}

		page, err := queries.ListOrders(c.Request.Context(), q)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, page)
	}
}

// HandleGetOrder handles GET /api/v1/orders/:id
func HandleGetOrder(queries service.OrderQueries, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := queries.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, order)
	}
}

// HandleGetTimeline handles GET /api/v1/orders/:id/timeline
func HandleGetTimeline(queries service.OrderQueries, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := queries.Timeline(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, entries)
	}
}

// HandleGetRemovedItems handles GET /api/v1/orders/:id/removed-items
func HandleGetRemovedItems(queries service.OrderQueries, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := queries.RemovedItems(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, items)
	}
}

// HandleVendorLineItems handles GET /api/v1/vendors/:vendor_id/line-items
func HandleVendorLineItems(queries service.OrderQueries, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		result, err := queries.VendorLineItems(c.Request.Context(), c.Param("vendor_id"), page, limit)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		respondOK(c, http.StatusOK, result)
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
