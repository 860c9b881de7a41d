package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
)

const (
	HeaderTotalCount = "X-Total-Count"
	HeaderLink       = "Link"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PageInfo describes the page carried by a list response.
type PageInfo struct {
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{Success: true, Data: data, Message: message})
}

func CreatedResponse(c *gin.Context, data interface{}, message ...string) {
	msg := "Resource created successfully"
	if len(message) > 0 {
		msg = message[0]
	}
	SuccessResponse(c, http.StatusCreated, msg, data)
}

// PagedResponse writes data with the total row count in X-Total-Count and,
// when the request paged, first/prev/next/last links in the Link header.
func PagedResponse(c *gin.Context, data interface{}, info PageInfo) {
	c.Header(HeaderTotalCount, strconv.FormatInt(info.Total, 10))
	if link := pageLinks(c, info); link != "" {
		c.Header(HeaderLink, link)
	}
	SuccessResponse(c, http.StatusOK, "", data)
}

func pageLinks(c *gin.Context, info PageInfo) string {
	if info.PerPage <= 0 || info.TotalPages <= 0 {
		return ""
	}

	link := func(page int, rel string) string {
		u := *c.Request.URL
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(info.PerPage))
		u.RawQuery = q.Encode()
		return fmt.Sprintf("<%s>; rel=%q", u.RequestURI(), rel)
	}

	links := []string{link(1, "first")}
	if info.Page > 1 {
		links = append(links, link(min(info.Page-1, info.TotalPages), "prev"))
	}
	if info.Page < info.TotalPages {
		links = append(links, link(info.Page+1, "next"))
	}
	links = append(links, link(info.TotalPages, "last"))
	return strings.Join(links, ", ")
}

// ErrorResponse writes a plain error for failures outside the AppError
// taxonomy, such as malformed auth headers.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: "error", Message: message},
	})
}

// ErrorResponseWithError maps AppErrors to their status code. Anything else
// is a 500 whose cause stays out of the body.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Error: &ErrorInfo{
				Type:    string(errors.ErrorTypeInternal),
				Message: constants.ErrMsgInternalServerError,
			},
		})
		return
	}

	c.JSON(appErr.Code, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}
