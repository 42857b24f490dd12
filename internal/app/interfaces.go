package app

import (
	"github.com/retouchshop/shopapi/config"
	"gorm.io/gorm"
)

// DBProvider exposes the shared gorm handle
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider exposes the loaded configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// AppContext is what a command holds once Init has succeeded: the database,
// the configuration and the schema lifecycle.
type AppContext interface {
	DBProvider
	ConfigProvider

	MigrateDB(track bool) error
	InitDb() error
	Release()
}
