package webserver

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/pkg/errors"
)

// LambdaHandler serves API Gateway proxy events with the echo router. When
// route is set, the request path is rebuilt as route plus the "id" path
// parameter, for gateways that map a whole function to a single URL.
func (s *Server) LambdaHandler(route string) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := echoadapter.New(s.root)
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if route != "" {
			event.Path = routePath(route, event.PathParameters["id"])
		}
		resp, err := adapter.ProxyWithContext(ctx, event)
		if err != nil {
			return resp, errors.Wrap(err, "proxy event")
		}
		return resp, nil
	}
}

func routePath(route, id string) string {
	path := strings.TrimRight(route, "/")
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	if path == "" {
		path = "/"
	}
	return path
}
