package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestContext creates a test gin.Context with the given method, path, and optional body.
func NewTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBytes))
		req.Header.Set("Content-Type", gin.MIMEJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	return c, w
}

// SetPrincipal attaches a principal the way the auth middleware does.
func SetPrincipal(c *gin.Context, p *permission.Principal) {
	c.Set(constants.ContextKeyPrincipal, p.Name)
	c.Request = c.Request.WithContext(permission.WithPrincipal(c.Request.Context(), p))
}

// SetURLParam sets a URL parameter on the gin context.
func SetURLParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

// SetQueryValues sets query parameters on the gin context, keeping repeated keys.
func SetQueryValues(c *gin.Context, params url.Values) {
	c.Request.URL.RawQuery = params.Encode()
}

// ParseResponse parses the JSON response body into the target struct.
func ParseResponse(w *httptest.ResponseRecorder, target interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), target)
}

// ParseData decodes the data member of a success envelope.
func ParseData[T any](w *httptest.ResponseRecorder) (T, error) {
	var (
		resp APIResponse
		data T
	)
	if err := ParseResponse(w, &resp); err != nil {
		return data, err
	}
	err := json.Unmarshal(resp.Data, &data)
	return data, err
}

// ErrorType returns the error type of a failure envelope, or "" when the
// body carries none.
func ErrorType(w *httptest.ResponseRecorder) string {
	var resp APIResponse
	if err := ParseResponse(w, &resp); err != nil || resp.Error == nil {
		return ""
	}
	return resp.Error.Type
}

// APIResponse mirrors utils.APIResponse for test assertions.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ErrorInfo mirrors utils.ErrorInfo for test assertions.
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewMockLogger returns a no-op logger.Interface for tests.
func NewMockLogger() logger.Interface {
	return logger.NewNopLogger()
}
