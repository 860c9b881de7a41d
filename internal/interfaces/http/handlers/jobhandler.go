package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	jobdto "github.com/candlepin/candlepin-sub005/internal/application/job/dto"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/utils"
)

type JobHandler struct {
	getUC    getJobUseCase
	listUC   listJobsUseCase
	cancelUC cancelJobUseCase
	logger   logger.Interface
}

func NewJobHandler(getUC getJobUseCase, listUC listJobsUseCase, cancelUC cancelJobUseCase, logger logger.Interface) *JobHandler {
	return &JobHandler{
		getUC:    getUC,
		listUC:   listUC,
		cancelUC: cancelUC,
		logger:   logger,
	}
}

// List handles GET /jobs
// Query parameters: key, owner, state (repeatable), page, per_page, sort_by, order
func (h *JobHandler) List(c *gin.Context) {
	page, err := utils.ParsePageRequest(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), jobdto.ListJobsRequest{
		JobKey:  c.Query("key"),
		OwnerID: c.Query("owner"),
		States:  c.QueryArray("state"),
		Page:    page,
	})
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

// Get handles GET /jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	result, err := h.getUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Cancel handles DELETE /jobs/:id
func (h *JobHandler) Cancel(c *gin.Context) {
	result, err := h.cancelUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Warnw("failed to cancel job", "job_id", c.Param("id"), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Job canceled", result)
}
