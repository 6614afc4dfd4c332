package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/service"
	"github.com/akhilmk-dev/menahub/internal/shopify"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// readShopifyWebhook reads the raw body (the HMAC is computed over raw bytes), verifies
// the signature and decodes the order payload. It writes the response on failure.
func readShopifyWebhook(c *gin.Context, secret string) (*shopify.OrderWebhook, bool) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Status: "error", Kind: errors.KindInternal, Message: "shopify webhook not configured"})
		return nil, false
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, "failed to read body")
		return nil, false
	}

	header := strings.TrimSpace(c.GetHeader("X-Shopify-Hmac-Sha256"))
	if !shopify.VerifyWebhookHMAC(body, header, secret) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Status: "error", Kind: errors.KindUnauthorized, Message: "invalid webhook signature"})
		return nil, false
	}

	payload, err := shopify.ParseOrderWebhook(body)
	if err != nil {
		respondBadRequest(c, err.Error())
		return nil, false
	}
	return payload, true
}

// HandleShopifyOrderCreateWebhook handles POST /webhooks/shopify/orders/create.
// Replays of an order we already hold are acknowledged so Shopify stops retrying.
func HandleShopifyOrderCreateWebhook(secret string, orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := readShopifyWebhook(c, secret)
		if !ok {
			return
		}

		snapshot := payload.Snapshot()
		_, created, err := orders.CreateFromSnapshot(c.Request.Context(), snapshot, "shopify")
		if err != nil {
			if errors.KindOf(err) == errors.KindConflict {
				c.JSON(http.StatusOK, gin.H{"ok": true, "status": "duplicate", "order_id": snapshot.ID})
				return
			}
			logger.Error("Shopify webhook: failed to create order", zap.String("order_id", snapshot.ID), zap.Error(err))
			respondError(c, err, logger)
			return
		}

		status := "created"
		if !created {
			status = "ignored_deleted"
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": status, "order_id": snapshot.ID})
	}
}

// HandleShopifyOrderPaidWebhook handles POST /webhooks/shopify/orders/paid
func HandleShopifyOrderPaidWebhook(secret string, orders service.OrderLifecycle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := readShopifyWebhook(c, secret)
		if !ok {
			return
		}

		snapshot := payload.Snapshot()
		update := service.StatusUpdate{
			FinancialStatus:   snapshot.FinancialStatus.String(),
			FulfillmentStatus: snapshot.FulfillmentStatus.String(),
			Currency:          snapshot.Currency,
		}
		for _, item := range snapshot.LineItems {
			update.LineItems = append(update.LineItems, service.LineItemStatus{
				ID:                item.ID,
				FulfillmentStatus: item.FulfillmentStatus.String(),
			})
		}

		if _, err := orders.MarkPaid(c.Request.Context(), snapshot.ID, update, "shopify"); err != nil {
			if errors.IsNotFound(err) {
				// Return 200 so Shopify doesn't keep retrying; the order may not exist in our DB.
				c.JSON(http.StatusOK, gin.H{"ok": true, "status": "not_found", "order_id": snapshot.ID})
				return
			}
			logger.Error("Shopify webhook: failed to mark order paid", zap.String("order_id", snapshot.ID), zap.Error(err))
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": "updated", "order_id": snapshot.ID})
	}
}
