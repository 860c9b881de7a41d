package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

func contextWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/pools?"+rawQuery, nil)
	return c
}

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *query.PageRequest
	}{
		{"nothing requested", "", nil},
		{"sort only", "sort_by=end_date&order=desc", &query.PageRequest{SortBy: "end_date", Order: query.SortDesc}},
		{"page only", "page=3", &query.PageRequest{Page: 3, PerPage: query.DefaultPageSize, Order: query.SortAsc}},
		{"per page capped", "per_page=1000", &query.PageRequest{Page: 1, PerPage: query.MaxPageSize, Order: query.SortAsc}},
		{
			"full request",
			"page=2&per_page=5&sort_by=quantity&order=ASC",
			&query.PageRequest{Page: 2, PerPage: 5, SortBy: "quantity", Order: query.SortAsc},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRequest(contextWithQuery(tt.query))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageRequest_Invalid(t *testing.T) {
	for _, raw := range []string{"page=two", "per_page=x", "order=sideways"} {
		_, err := ParsePageRequest(contextWithQuery(raw))
		require.Error(t, err, raw)
		assert.True(t, errors.IsValidationError(err), raw)
	}
}
