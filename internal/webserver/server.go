package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/retouchshop/shopapi/config"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server wraps the echo instance shared by the HTTP server and the Lambda
// entry point.
type Server struct {
	root   *echo.Echo
	config *config.AppConfig
}

func NewServer(cfg *config.AppConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.OFF)
	if cfg.System.Debug {
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
	}
	e.JSONSerializer = jsoniterSerializer{}
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("http request", append(fields, zap.Error(v.Error))...)
			} else {
				zap.L().Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(middleware.BodyLimit("20M"))

	return &Server{root: e, config: cfg}
}

// Echo exposes the underlying router.
func (s *Server) Echo() *echo.Echo {
	return s.root
}

// Group returns a route group whose responses carry the CORS origin header
// and whose OPTIONS requests are answered with the given method list.
// allowOrigin is attached per route: group-level middleware would register
// catch-all routes and turn 405 answers into 404.
func (s *Server) Group(prefix string, methods ...string) *Group {
	g := s.root.Group(prefix)
	return &Group{group: g, methods: strings.Join(append(methods, http.MethodOptions), ", ")}
}

// ServeHTTP lets the server be driven directly, e.g. by tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.root.ServeHTTP(w, r)
}

// Start runs the HTTP listener until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Web.Host, s.config.Web.Port)
	errc := make(chan error, 1)
	go func() {
		zap.S().Infof("Prepare to start the web server at %s", addr)
		errc <- s.root.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.S().Info("Shutting down the web server")
		return s.root.Shutdown(shutdownCtx)
	}
}

// Group registers handlers under one path prefix.
type Group struct {
	group   *echo.Group
	methods string
}

func (g *Group) GET(path string, h echo.HandlerFunc)    { g.group.GET(path, h, allowOrigin) }
func (g *Group) POST(path string, h echo.HandlerFunc)   { g.group.POST(path, h, allowOrigin) }
func (g *Group) PUT(path string, h echo.HandlerFunc)    { g.group.PUT(path, h, allowOrigin) }
func (g *Group) DELETE(path string, h echo.HandlerFunc) { g.group.DELETE(path, h, allowOrigin) }

// Preflight answers OPTIONS on path with an empty 200.
func (g *Group) Preflight(path string) {
	g.group.OPTIONS(path, func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowMethods, g.methods)
		h.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type, X-Admin-Key")
		h.Set(echo.HeaderAccessControlMaxAge, "86400")
		return c.NoContent(http.StatusOK)
	}, allowOrigin)
}

func allowOrigin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
		return next(c)
	}
}

// httpErrorHandler renders errors that escaped the handlers (unknown routes,
// unsupported methods, panics) in the same {"error": ...} shape.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusMethodNotAllowed:
			message = "Method not allowed"
		case http.StatusNotFound:
			message = "Not found"
		default:
			message = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		zap.L().Error("unhandled request error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}

	c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": message})
}

// jsoniterSerializer implements echo.JSONSerializer with json-iterator.
type jsoniterSerializer struct{}

func (jsoniterSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsoniterSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body: "+err.Error()).SetInternal(err)
	}
	return nil
}
