package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// ParsePageRequest reads page, per_page, sort_by and order. Without page or
// per_page the result does not page: it is nil, or carries only the sort
// when sort_by is given.
func ParsePageRequest(c *gin.Context) (*query.PageRequest, error) {
	order, err := query.ParseSortOrder(c.Query("order"))
	if err != nil {
		return nil, err
	}
	sortBy := c.Query("sort_by")

	pageRaw, hasPage := c.GetQuery("page")
	perPageRaw, hasPerPage := c.GetQuery("per_page")
	if !hasPage && !hasPerPage {
		if sortBy == "" {
			return nil, nil
		}
		return &query.PageRequest{SortBy: sortBy, Order: order}, nil
	}

	page, err := parseQueryInt("page", pageRaw, 1)
	if err != nil {
		return nil, err
	}
	perPage, err := parseQueryInt("per_page", perPageRaw, query.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	return query.NewPageRequest(page, perPage, sortBy, order), nil
}

func parseQueryInt(key, raw string, defaultVal int) (int, error) {
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError("invalid "+key, raw)
	}
	return v, nil
}
