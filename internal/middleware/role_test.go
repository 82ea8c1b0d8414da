package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func doWithRole(t *testing.T, role string, setRole bool, allowed ...string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected",
		func(c *gin.Context) {
			if setRole {
				c.Set(ContextAdminRole, role)
			}
		},
		RequireRole(allowed...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	return w.Code
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, doWithRole(t, "admin", true, "admin"))
	assert.Equal(t, http.StatusOK, doWithRole(t, "scanner", true, "admin", "scanner"))
	assert.Equal(t, http.StatusForbidden, doWithRole(t, "scanner", true, "admin"))
	assert.Equal(t, http.StatusUnauthorized, doWithRole(t, "", false, "admin"))
}
