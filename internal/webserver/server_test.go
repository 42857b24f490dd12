package webserver

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"

	"github.com/retouchshop/shopapi/config"
)

func newTestServer() *Server {
	s := NewServer(config.DefaultAppConfig)
	g := s.Group("/items", http.MethodGet, http.MethodPost)
	g.Preflight("")
	g.Preflight("/:id")
	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"category": c.QueryParam("category")})
	})
	g.GET("/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	})
	g.POST("", func(c echo.Context) error {
		body, _ := io.ReadAll(c.Request().Body)
		return c.Blob(http.StatusOK, "application/octet-stream", body)
	})
	g.GET("/panic", func(c echo.Context) error {
		panic("boom")
	})
	return s
}

func TestPreflight(t *testing.T) {
	c := qt.New(t)
	s := newTestServer()

	for _, path := range []string{"/items", "/items/5"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, path, nil))

		c.Assert(rec.Code, qt.Equals, http.StatusOK)
		c.Assert(rec.Body.Len(), qt.Equals, 0)
		c.Assert(rec.Header().Get("Access-Control-Allow-Origin"), qt.Equals, "*")
		c.Assert(rec.Header().Get("Access-Control-Allow-Methods"), qt.Equals, "GET, POST, OPTIONS")
		c.Assert(rec.Header().Get("Access-Control-Allow-Headers"), qt.Equals, "Content-Type, X-Admin-Key")
		c.Assert(rec.Header().Get("Access-Control-Max-Age"), qt.Equals, "86400")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	c := qt.New(t)
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/items", nil))

	c.Assert(rec.Code, qt.Equals, http.StatusMethodNotAllowed)
	c.Assert(rec.Header().Get("Access-Control-Allow-Origin"), qt.Equals, "*")
	c.Assert(strings.TrimSpace(rec.Body.String()), qt.Equals, `{"error":"Method not allowed"}`)
}

func TestPanicIsRecovered(t *testing.T) {
	c := qt.New(t)
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/panic", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(rec.Body.String(), qt.Contains, `"error"`)
}

func TestLambdaHandlerRoutesEvent(t *testing.T) {
	c := qt.New(t)
	handler := newTestServer().LambdaHandler("")

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  "/items",
		QueryStringParameters: map[string]string{"category": "premium"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(resp.IsBase64Encoded, qt.IsFalse)
	c.Assert(strings.TrimSpace(resp.Body), qt.Equals, `{"category":"premium"}`)
	c.Assert(resp.MultiValueHeaders["Access-Control-Allow-Origin"], qt.DeepEquals, []string{"*"})
}

func TestLambdaHandlerFixedRoute(t *testing.T) {
	c := qt.New(t)
	handler := newTestServer().LambdaHandler("/items")

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/",
		PathParameters: map[string]string{"id": "42"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(strings.TrimSpace(resp.Body), qt.Equals, `{"id":"42"}`)
}

func TestLambdaHandlerBinaryBodies(t *testing.T) {
	c := qt.New(t)
	handler := newTestServer().LambdaHandler("")

	payload := []byte{'P', 'K', 0x03, 0x04, 0xff, 0xfe}
	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/items",
		Body:            base64.StdEncoding.EncodeToString(payload),
		IsBase64Encoded: true,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(resp.IsBase64Encoded, qt.IsTrue)

	echoed, err := base64.StdEncoding.DecodeString(resp.Body)
	c.Assert(err, qt.IsNil)
	c.Assert(echoed, qt.DeepEquals, payload)
}

func TestLambdaHandlerBadBase64(t *testing.T) {
	c := qt.New(t)
	handler := newTestServer().LambdaHandler("")

	_, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/items",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	c.Assert(err, qt.ErrorMatches, `(?s)proxy event: .*`)
}

func TestRoutePath(t *testing.T) {
	c := qt.New(t)
	c.Assert(routePath("/items/", ""), qt.Equals, "/items")
	c.Assert(routePath("/items", "42"), qt.Equals, "/items/42")
	c.Assert(routePath("/", ""), qt.Equals, "/")
}
