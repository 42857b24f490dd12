package adminapi

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/retouchshop/shopapi/internal/catalog"
	"github.com/retouchshop/shopapi/internal/domain"
	"github.com/retouchshop/shopapi/internal/storage"
	"github.com/retouchshop/shopapi/internal/webserver"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv; charset=utf-8"
)

// zip local file header, the start of every xlsx file
var xlsxMagic = []byte("PK\x03\x04")

// registerProductRoutes registers product CRUD, import and export endpoints
func registerProductRoutes(g *webserver.Group, h *Handlers) {
	g.Preflight("")
	g.Preflight("/:id")
	g.GET("", h.listProducts)
	g.GET("/export", h.exportProducts)
	g.GET("/:id", h.getProduct)
	g.POST("", h.createOrImportProducts)
	g.PUT("/:id", h.updateProduct)
	g.DELETE("/:id", h.deleteProduct)
}

func (h *Handlers) listProducts(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	rows, err := h.Products.List(c.Request().Context(), category)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, echo.Map{"products": rows})
}

func (h *Handlers) getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := h.Products.Get(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return ok(c, echo.Map{"product": p})
}

// createOrImportProducts creates one product from a JSON body; any other
// body is treated as a spreadsheet for bulk import.
func (h *Handlers) createOrImportProducts(c echo.Context) error {
	if !isJSONRequest(c.Request()) {
		return h.importProducts(c)
	}

	var payload domain.ProductFields
	if err := bindProduct(c, &payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
	}

	p, err := h.Products.Create(c.Request().Context(), payload)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	zap.L().Info("product created", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return created(c, echo.Map{"product": p})
}

func (h *Handlers) updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload domain.ProductFields
	if err := bindProduct(c, &payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
	}

	p, err := h.Products.Update(c.Request().Context(), id, payload)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, echo.Map{"product": p})
}

func (h *Handlers) deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	err = h.Products.Delete(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, echo.Map{
		"id":      strconv.FormatInt(id, 10),
		"message": "Product deleted successfully",
	})
}

func (h *Handlers) importProducts(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read request body", err.Error())
	}
	data, err := spreadsheetBytes(body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to decode spreadsheet", err.Error())
	}

	result, err := h.Importer.Import(c.Request().Context(), data)
	if errors.Is(err, catalog.ErrInvalidWorkbook) {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to read spreadsheet", err.Error())
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "IMPORT_FAILED", "Failed to import products", err.Error())
	}
	return ok(c, result)
}

func (h *Handlers) exportProducts(c echo.Context) error {
	rows, err := h.Products.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var buf bytes.Buffer
	switch format := c.QueryParam("format"); format {
	case "", "xlsx":
		if err := catalog.WriteXLSX(&buf, rows); err != nil {
			return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export products", err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
		return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
	case "csv":
		if err := catalog.WriteCSV(&buf, rows); err != nil {
			return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export products", err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
		return c.Blob(http.StatusOK, mimeCSV, buf.Bytes())
	default:
		return fail(c, http.StatusBadRequest, "INVALID_FORMAT", "Format must be 'xlsx' or 'csv'", nil)
	}
}

// bindProduct decodes a JSON product body. The content type is not
// checked: a body without one is still JSON here.
func bindProduct(c echo.Context, payload *domain.ProductFields) error {
	if err := c.Echo().JSONSerializer.Deserialize(c, payload); err != nil {
		return err
	}
	payload.Name = strings.TrimSpace(payload.Name)
	return nil
}

func isJSONRequest(r *http.Request) bool {
	ct := r.Header.Get(echo.HeaderContentType)
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == echo.MIMEApplicationJSON
}

// spreadsheetBytes accepts the workbook raw or as base64 text, the latter
// optionally with a data-URI prefix.
func spreadsheetBytes(body []byte) ([]byte, error) {
	if bytes.HasPrefix(body, xlsxMagic) {
		return body, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty body")
	}
	return storage.DecodePayload(string(body))
}
