package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entdto "github.com/candlepin/candlepin-sub005/internal/application/entitlement/dto"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/utils"
)

// EntitlementHandler handles HTTP requests for entitlement operations
type EntitlementHandler struct {
	bindUC      bindPoolUseCase
	getUC       getEntitlementUseCase
	listUC      listConsumerEntitlementsUseCase
	revokeUC    revokeEntitlementUseCase
	modifyingUC findModifyingEntitlementsUseCase
	logger      logger.Interface
}

// NewEntitlementHandler creates a new entitlement handler
func NewEntitlementHandler(
	bindUC bindPoolUseCase,
	getUC getEntitlementUseCase,
	listUC listConsumerEntitlementsUseCase,
	revokeUC revokeEntitlementUseCase,
	modifyingUC findModifyingEntitlementsUseCase,
	logger logger.Interface,
) *EntitlementHandler {
	return &EntitlementHandler{
		bindUC:      bindUC,
		getUC:       getUC,
		listUC:      listUC,
		revokeUC:    revokeUC,
		modifyingUC: modifyingUC,
		logger:      logger,
	}
}

// BindRequest is the body of a bind call. The consumer comes from the path.
type BindRequest struct {
	PoolID   string `json:"pool_id" binding:"required"`
	Quantity int64  `json:"quantity" binding:"omitempty,min=1"`
}

// Bind handles POST /consumers/:consumer_uuid/entitlements
func (h *EntitlementHandler) Bind(c *gin.Context) {
	var req BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for bind", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.bindUC.Execute(c.Request.Context(), entdto.BindRequest{
		ConsumerUUID: c.Param("consumer_uuid"),
		PoolID:       req.PoolID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Pool bound successfully")
}

// ListForConsumer handles GET /consumers/:consumer_uuid/entitlements
// Query parameters:
//   - activeon: RFC3339 or YYYY-MM-DD
//   - product: only entitlements granting this product
func (h *EntitlementHandler) ListForConsumer(c *gin.Context) {
	activeOn, err := parseDateParam(c, "activeon")
	if err != nil {
		h.logger.Warnw("invalid query for list entitlements", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), entdto.ListConsumerEntitlementsRequest{
		ConsumerUUID: c.Param("consumer_uuid"),
		ActiveOn:     activeOn,
		ProductID:    c.Query("product"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Get handles GET /entitlements/:id
func (h *EntitlementHandler) Get(c *gin.Context) {
	result, err := h.getUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Revoke handles DELETE /entitlements/:id
func (h *EntitlementHandler) Revoke(c *gin.Context) {
	result, err := h.revokeUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Entitlement revoked", result)
}

// Modifying handles GET /entitlements/:id/modifying
func (h *EntitlementHandler) Modifying(c *gin.Context) {
	result, err := h.modifyingUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
