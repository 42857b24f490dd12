package app

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/retouchshop/shopapi/config"
	"github.com/retouchshop/shopapi/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Application owns the process-wide resources shared by every handler.
type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
}

var (
	_ DBProvider     = (*Application)(nil)
	_ ConfigProvider = (*Application)(nil)
	_ AppContext     = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB swaps the database handle; tests use it to inject sqlite.
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

// Init installs the logger, opens the database once for the life of the
// process and creates the products table if it is missing.
func (a *Application) Init(cfg *config.AppConfig) error {
	if err := InitLogger(cfg.Logger); err != nil {
		return err
	}
	if loc, err := time.LoadLocation(cfg.System.Location); err != nil {
		zap.L().Warn("unknown timezone, keeping system default",
			zap.String("location", cfg.System.Location), zap.Error(err))
	} else {
		time.Local = loc
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	a.gormDB = db
	zap.L().Info("database connected", zap.String("type", cfg.Database.Type))

	return a.MigrateDB(false)
}

// MigrateDB creates or widens the tables in domain.Tables. A panic raised
// by the migrator is returned as an error.
func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("migrate: %v", r)
			zap.L().Error("schema migration panicked", zap.Any("panic", r))
		}
	}()

	db := a.gormDB
	if track {
		db = db.Debug()
	}
	if err := db.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.L().Error("schema migration failed", zap.Error(err))
		return errors.Wrap(err, "migrate")
	}
	return nil
}

func (a *Application) DropAll() error {
	return a.gormDB.Migrator().DropTable(domain.Tables...)
}

// InitDb drops and recreates every table.
func (a *Application) InitDb() error {
	if err := a.DropAll(); err != nil {
		return errors.Wrap(err, "drop tables")
	}
	return a.MigrateDB(false)
}

// Release closes the database pool and flushes the logger.
func (a *Application) Release() {
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
