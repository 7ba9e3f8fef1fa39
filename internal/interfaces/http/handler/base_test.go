package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumescore/backend/internal/domain/shared"
	"github.com/resumescore/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context string",
			setup: func(c *gin.Context) {
				c.Set("request_id", "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(RequestIDKey, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set("request_id", "ctx-id")
				c.Request.Header.Set(RequestIDKey, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext()
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success envelops the payload", func(t *testing.T) {
		c, w := newTestContext()
		h.Success(c, map[string]string{"key": "value"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("SuccessWithMeta carries pagination", func(t *testing.T) {
		c, w := newTestContext()
		h.SuccessWithMeta(c, []string{"a", "b"}, 100, 1, 10)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(100), resp.Meta.Total)
	})

	t.Run("Created answers 201", func(t *testing.T) {
		c, w := newTestContext()
		h.Created(c, map[string]string{"id": "123"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("NoContent answers an empty 204", func(t *testing.T) {
		router := gin.New()
		router.DELETE("/analyses/:id", func(c *gin.Context) {
			h.NoContent(c)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("DELETE", "/analyses/abc", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "BadRequest",
			method: func(h *BaseHandler, c *gin.Context) {
				h.BadRequest(c, "Invalid request")
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeBadRequest,
		},
		{
			name: "NotFound",
			method: func(h *BaseHandler, c *gin.Context) {
				h.NotFound(c, "Resource not found")
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name: "InternalError",
			method: func(h *BaseHandler, c *gin.Context) {
				h.InternalError(c, "Server error")
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			tt.method(&BaseHandler{}, c)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set("request_id", "test-request-123")

	h.BadRequest(c, "Invalid request")

	assert.Equal(t, "test-request-123", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set("request_id", "val-req-456")

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "resume_text", Message: "Required"},
		{Field: "page_size", Message: "Must be at most 100"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "val-req-456", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"already exists", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"concurrency conflict", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"empty resume", shared.ErrEmptyResume, http.StatusBadRequest, dto.ErrCodeEmptyResume},
		{"unsupported file", shared.ErrUnsupportedFile, http.StatusBadRequest, dto.ErrCodeUnsupportedFile},
		{"model failure", shared.ErrModelFailure, http.StatusInternalServerError, dto.ErrCodeModelFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			(&BaseHandler{}).HandleDomainError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}

	t.Run("non-domain error becomes opaque 500", func(t *testing.T) {
		c, w := newTestContext()
		(&BaseHandler{}).HandleDomainError(c, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	})
}

func TestBaseHandlerHandleDomainErrorDetail(t *testing.T) {
	t.Run("domain error becomes detail body", func(t *testing.T) {
		c, w := newTestContext()
		(&BaseHandler{}).HandleDomainErrorDetail(c, shared.ErrEmptyResume)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.DetailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Resume text is empty", resp.Detail)
	})

	t.Run("unknown error becomes 500 detail", func(t *testing.T) {
		c, w := newTestContext()
		(&BaseHandler{}).HandleDomainErrorDetail(c, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.DetailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "An unexpected error occurred", resp.Detail)
	})
}
