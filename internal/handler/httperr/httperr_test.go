//go:build unit

package httperr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solestore/internal/handler/httperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("writes a flat error body and records the cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		cause := errors.New("connection refused")
		httperr.AbortWithError(c, http.StatusInternalServerError, cause, "Internal server error", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Internal server error", body.Error)

		require.Len(t, c.Errors, 1)
		assert.Same(t, cause, c.Errors[0].Err)
		assert.True(t, c.Errors[0].IsType(gin.ErrorTypePublic))
	})

	t.Run("nil cause is substituted so middleware still sees an error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Len(t, c.Errors, 1)
		assert.EqualError(t, c.Errors[0].Err, "Unauthorized")
	})

	t.Run("detail is included when present", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		httperr.AbortWithError(c, http.StatusBadRequest, errors.New("bad size"), "Invalid request", map[string]string{"field": "size"})

		var body struct {
			Error  string            `json:"error"`
			Detail map[string]string `json:"detail"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Invalid request", body.Error)
		assert.Equal(t, "size", body.Detail["field"])
	})
}
