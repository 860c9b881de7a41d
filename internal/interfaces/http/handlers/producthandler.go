package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	productdto "github.com/candlepin/candlepin-sub005/internal/application/product/dto"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/utils"
)

// ProductHandler handles HTTP requests for owner products
type ProductHandler struct {
	removeUC removeProductUseCase
	logger   logger.Interface
}

func NewProductHandler(removeUC removeProductUseCase, logger logger.Interface) *ProductHandler {
	return &ProductHandler{
		removeUC: removeUC,
		logger:   logger,
	}
}

// Remove handles DELETE /owners/:owner_key/products/:product_id
func (h *ProductHandler) Remove(c *gin.Context) {
	result, err := h.removeUC.Execute(c.Request.Context(), productdto.RemoveProductRequest{
		OwnerKey:  c.Param("owner_key"),
		ProductID: c.Param("product_id"),
	})
	if err != nil {
		h.logger.Warnw("failed to remove product", "owner_key", c.Param("owner_key"), "product_id", c.Param("product_id"), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Product removed", result)
}
