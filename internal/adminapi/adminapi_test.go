package adminapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"

	"github.com/retouchshop/shopapi/config"
	"github.com/retouchshop/shopapi/internal/app/apptest"
	"github.com/retouchshop/shopapi/internal/catalog"
	"github.com/retouchshop/shopapi/internal/storage"
	"github.com/retouchshop/shopapi/internal/telegram"
	"github.com/retouchshop/shopapi/internal/webserver"
)

type testEnv struct {
	server *webserver.Server
	repo   *catalog.GormRepository
}

// setupTestServer wires every route against an in-memory database and the
// given relay configuration.
func setupTestServer(t *testing.T, tg config.TelegramConfig, st config.StorageConfig) *testEnv {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	db := apptest.NewApp(t).DB()
	repo := catalog.NewGormRepository(db, node)

	s := webserver.NewServer(config.DefaultAppConfig)
	Init(s, &Handlers{
		DB:       db,
		Products: repo,
		Importer: catalog.NewImporter(repo),
		Notifier: telegram.NewClient(tg),
		Uploader: storage.NewUploader(st),
	})
	return &testEnv{server: s, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, target, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	return e.do(t, method, target, "application/json", data)
}

func decode(t *testing.T, r io.Reader, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func newJSONServer(t *testing.T, status int, reply string, requests *[][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if requests != nil {
			*requests = append(*requests, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}
