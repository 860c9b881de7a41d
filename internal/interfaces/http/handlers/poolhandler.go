package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	pooldto "github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/utils"
)

type PoolHandler struct {
	listAvailableUC     listAvailablePoolsUseCase
	getPoolUC           getPoolUseCase
	oversubscribedUC    findOversubscribedPoolsUseCase
	subscriptionPoolsUC listSubscriptionPoolsUseCase
	poolStatusUC        getOwnerPoolStatusUseCase
	logger              logger.Interface
}

func NewPoolHandler(
	listAvailableUC listAvailablePoolsUseCase,
	getPoolUC getPoolUseCase,
	oversubscribedUC findOversubscribedPoolsUseCase,
	subscriptionPoolsUC listSubscriptionPoolsUseCase,
	poolStatusUC getOwnerPoolStatusUseCase,
	logger logger.Interface,
) *PoolHandler {
	return &PoolHandler{
		listAvailableUC:     listAvailableUC,
		getPoolUC:           getPoolUC,
		oversubscribedUC:    oversubscribedUC,
		subscriptionPoolsUC: subscriptionPoolsUC,
		poolStatusUC:        poolStatusUC,
		logger:              logger,
	}
}

// OversubscribedRequest is the body of the oversubscription check.
type OversubscribedRequest struct {
	BySubscription map[string]string `json:"by_subscription" binding:"required"`
}

// ListPools handles GET /pools
// Query parameters:
//   - owner / consumer: at least one is required
//   - product, pool_id, matches: repeatable
//   - attribute: repeatable, name:value
//   - activeon / after: RFC3339 or YYYY-MM-DD
//   - add_future, only_future, include_ueber: booleans
//   - page, per_page, sort_by, order
func (h *PoolHandler) ListPools(c *gin.Context) {
	req, err := parseListPoolsQuery(c)
	if err != nil {
		h.logger.Warnw("invalid query for list pools", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listAvailableUC.Execute(c.Request.Context(), *req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.PagedResponse(c, result, utils.PageInfo{
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: result.TotalPages,
	})
}

// GetPool handles GET /pools/:pool_id
func (h *PoolHandler) GetPool(c *gin.Context) {
	poolID := c.Param("pool_id")
	if poolID == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("pool id is required"))
		return
	}

	result, err := h.getPoolUC.Execute(c.Request.Context(), poolID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// FindOversubscribed handles POST /owners/:owner_key/oversubscribed
func (h *PoolHandler) FindOversubscribed(c *gin.Context) {
	var body OversubscribedRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warnw("invalid request body for oversubscribed pools", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.oversubscribedUC.Execute(c.Request.Context(), pooldto.OversubscribedRequest{
		OwnerKey:       c.Param("owner_key"),
		BySubscription: body.BySubscription,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListSubscriptionPools handles GET /owners/:owner_key/subscriptions/pools
// with one or more subscription query parameters.
func (h *PoolHandler) ListSubscriptionPools(c *gin.Context) {
	result, err := h.subscriptionPoolsUC.Execute(c.Request.Context(), pooldto.SubscriptionPoolsRequest{
		OwnerKey:        c.Param("owner_key"),
		SubscriptionIDs: c.QueryArray("subscription"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetPoolStatus handles GET /owners/:owner_key/pools/status
func (h *PoolHandler) GetPoolStatus(c *gin.Context) {
	activeOn, err := parseDateParam(c, "activeon")
	if err != nil {
		h.logger.Warnw("invalid query for pool status", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.poolStatusUC.Execute(c.Request.Context(), pooldto.OwnerPoolStatusRequest{
		OwnerKey: c.Param("owner_key"),
		ActiveOn: activeOn,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func parseListPoolsQuery(c *gin.Context) (*pooldto.ListAvailableRequest, error) {
	req := &pooldto.ListAvailableRequest{
		OwnerKey:       c.Query("owner"),
		ConsumerUUID:   c.Query("consumer"),
		ProductIDs:     c.QueryArray("product"),
		SubscriptionID: c.Query("subscription"),
		PoolIDs:        c.QueryArray("pool_id"),
		Matches:        c.QueryArray("matches"),
	}

	var err error
	if req.ActiveOn, err = parseDateParam(c, "activeon"); err != nil {
		return nil, err
	}
	if req.After, err = parseDateParam(c, "after"); err != nil {
		return nil, err
	}
	if req.AddFuture, err = parseBoolParam(c, "add_future"); err != nil {
		return nil, err
	}
	if req.OnlyFuture, err = parseBoolParam(c, "only_future"); err != nil {
		return nil, err
	}
	if req.IncludeUeber, err = parseBoolParam(c, "include_ueber"); err != nil {
		return nil, err
	}

	for _, raw := range c.QueryArray("attribute") {
		name, value, ok := strings.Cut(raw, ":")
		if !ok || name == "" {
			return nil, errors.NewValidationError("attribute filter must be name:value", raw)
		}
		if req.Attributes == nil {
			req.Attributes = make(map[string][]string)
		}
		req.Attributes[name] = append(req.Attributes[name], value)
	}

	if req.Page, err = utils.ParsePageRequest(c); err != nil {
		return nil, err
	}
	return req, nil
}

func parseDateParam(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errors.NewValidationError("invalid date for "+key, raw)
	}
	return &t, nil
}

func parseBoolParam(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewValidationError("invalid boolean for "+key, raw)
	}
	return v, nil
}
