package adminapi

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/retouchshop/shopapi/internal/catalog"
	"github.com/retouchshop/shopapi/internal/webserver"
)

// Notifier forwards retouch requests to the shop's channel.
type Notifier interface {
	HasToken() bool
	HasChatId() bool
	SendPhoto(ctx context.Context, photoURL, caption string) error
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Handlers carries the collaborators of every route. DB is optional and
// only backs the health check.
type Handlers struct {
	DB       *gorm.DB
	Products catalog.Repository
	Importer *catalog.Importer
	Notifier Notifier
	Uploader Uploader
}

// Init registers all routes on the server.
func Init(s *webserver.Server, h *Handlers) {
	registerProductRoutes(s.Group("/products",
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete), h)
	registerTelegramRoutes(s.Group("/telegram", http.MethodPost), h)
	registerUploadRoutes(s.Group("/upload", http.MethodPost), h)
	if h.DB != nil {
		registerHealthRoutes(s.Group("/health", http.MethodGet), h.DB)
	}
}
