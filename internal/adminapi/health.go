package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/retouchshop/shopapi/internal/domain"
	"github.com/retouchshop/shopapi/internal/webserver"
)

// TableInfo reports the row count of one managed table.
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

func registerHealthRoutes(g *webserver.Group, db *gorm.DB) {
	g.Preflight("")
	g.GET("", func(c echo.Context) error {
		return health(c, db)
	})
}

// health pings the database and counts the rows of every managed table.
func health(c echo.Context, db *gorm.DB) error {
	ctx := c.Request().Context()
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "DATABASE_ERROR", "Database unavailable", err.Error())
	}

	tables := make([]TableInfo, 0, len(domain.Tables))
	for _, model := range domain.Tables {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to inspect schema", err.Error())
		}
		var count int64
		if err := db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count rows", err.Error())
		}
		tables = append(tables, TableInfo{Name: stmt.Schema.Table, RowCount: count})
	}

	return ok(c, echo.Map{
		"status":   "ok",
		"database": db.Dialector.Name(),
		"tables":   tables,
	})
}
