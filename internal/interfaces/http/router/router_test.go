package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouterDefaults(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRegisterQueuesRegistrar(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("analyses", "/analyses"))
	assert.Len(t, r.registrars, 1)
}

func TestSetupMountsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("analyses", "/analyses")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group)
	r.Setup()

	w := serve(engine, "GET", "/api/v1/analyses/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	// Route must not be reachable without the prefix
	w = serve(engine, "GET", "/analyses/ping")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroupAccessors(t *testing.T) {
	g := NewDomainGroup("scoring", "/analyses")
	assert.Equal(t, "scoring", g.Name())
	assert.Equal(t, "/analyses", g.Prefix())
}

func TestDomainGroupRegistersAllVerbs(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test")

	ok := func(status int) gin.HandlerFunc {
		return func(c *gin.Context) { c.Status(status) }
	}
	g.GET("/items", ok(http.StatusOK)).
		POST("/items", ok(http.StatusCreated)).
		PUT("/items/:id", ok(http.StatusOK)).
		PATCH("/items/:id", ok(http.StatusOK)).
		DELETE("/items/:id", ok(http.StatusNoContent))

	api := engine.Group("/api/v1")
	g.RegisterRoutes(api)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/v1/test/items", http.StatusOK},
		{"POST", "/api/v1/test/items", http.StatusCreated},
		{"PUT", "/api/v1/test/items/1", http.StatusOK},
		{"PATCH", "/api/v1/test/items/1", http.StatusOK},
		{"DELETE", "/api/v1/test/items/1", http.StatusNoContent},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test")

	g.Use(func(c *gin.Context) {
		c.Header("X-Group-Middleware", "applied")
		c.Next()
	})
	g.GET("/items", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, "GET", "/api/v1/test/items")
	assert.Equal(t, "applied", w.Header().Get("X-Group-Middleware"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("analyses", "/analyses")

	reports := g.Group("reports", "/reports")
	reports.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "reports list")
	})

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, "GET", "/api/v1/analyses/reports")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reports list", w.Body.String())
}

func TestMultipleRegistrars(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	analyses := NewDomainGroup("analyses", "/analyses")
	analyses.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "analyses")
	})

	system := NewDomainGroup("system", "/system")
	system.GET("/info", func(c *gin.Context) {
		c.String(http.StatusOK, "info")
	})

	r.Register(analyses).Register(system).Setup()

	w := serve(engine, "GET", "/api/v1/analyses")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "analyses", w.Body.String())

	w = serve(engine, "GET", "/api/v1/system/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "info", w.Body.String())
}
