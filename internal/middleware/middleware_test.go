package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/write", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesAndKeeps(t *testing.T) {
	r := newRouter(RequestID())

	w := do(r, http.MethodGet, "/ping", nil)
	require.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = do(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "abc-123"})
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLogger_WritesRequestFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(RequestID(), Logger(zap.New(core)))

	do(r, http.MethodGet, "/ping?x=1", map[string]string{RequestIDHeader: "rid"})
	do(r, http.MethodGet, "/missing", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	require.Equal(t, "/ping", first["path"])
	require.Equal(t, "x=1", first["query"])
	require.EqualValues(t, 200, first["status"])
	require.Equal(t, "rid", first["request_id"])

	require.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestCORS_ConfiguredOrigins(t *testing.T) {
	r := newRouter(CORS([]string{"http://hmi.local"}))

	w := do(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://hmi.local"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "http://hmi.local", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = do(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://evil.local"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/ping", map[string]string{
		"Origin":                        "http://hmi.local",
		"Access-Control-Request-Method": http.MethodGet,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	// no Origin header: not a CORS request, routing decides
	w = do(r, http.MethodOptions, "/ping", nil)
	require.NotEqual(t, http.StatusNoContent, w.Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
}

func TestCORS_WildcardHasNoCredentials(t *testing.T) {
	r := newRouter(CORS([]string{"*"}))

	w := do(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://any.local"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_EmptyListIsPassThrough(t *testing.T) {
	r := newRouter(CORS(nil))

	w := do(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://hmi.local"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminToken(t *testing.T) {
	open := newRouter(AdminToken(""))
	require.Equal(t, http.StatusCreated, do(open, http.MethodPost, "/write", nil).Code)

	guarded := newRouter(AdminToken("s3cret"))
	w := do(guarded, http.MethodPost, "/write", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"detail":"Unauthorized"}`, w.Body.String())

	w = do(guarded, http.MethodPost, "/write", map[string]string{AdminTokenHeader: "s3cret"})
	require.Equal(t, http.StatusCreated, w.Code)
}
