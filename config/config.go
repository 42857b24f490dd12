package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DBConfig Database config
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	URL      string `yaml:"url"`  // full DSN, takes precedence over the discrete fields
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// DSN returns the connection string for the configured database.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Passwd, d.Name)
}

// SysConfig System config
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	NodeId   int64  `yaml:"node_id"` // snowflake node for product ids
	Debug    bool   `yaml:"debug"`
}

// WebConfig Web server config
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig Logger config
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// TelegramConfig holds the bot credential and the channel that receives
// retouch requests.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatId   string `yaml:"chat_id"`
	ApiBase  string `yaml:"api_base"`
}

// StorageConfig describes the upload endpoint and the CDN that serves
// uploaded files.
type StorageConfig struct {
	UploadURL string `yaml:"upload_url"`
	CdnBase   string `yaml:"cdn_base"`
	ProjectId string `yaml:"project_id"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Logger   LogConfig      `yaml:"logger"`
	Telegram TelegramConfig `yaml:"telegram"`
	Storage  StorageConfig  `yaml:"storage"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "ShopApi",
		Location: "Europe/Moscow",
		NodeId:   1,
		Debug:    false,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 8080,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "shopapi",
		User:     "postgres",
		Passwd:   "postgres",
		MaxConn:  20,
		IdleConn: 2,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/shopapi/shopapi.log",
	},
	Telegram: TelegramConfig{
		ApiBase: "https://api.telegram.org",
	},
	Storage: StorageConfig{
		UploadURL: "https://api.poehali.dev/upload",
		CdnBase:   "https://cdn.poehali.dev",
	},
}

// LoadConfig reads the yaml file (when given and present) on top of the
// defaults and then applies environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	if cfile == "" {
		cfile = os.Getenv("SHOPAPI_CONFIG")
	}
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}

	setEnvValue("SHOPAPI_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvInt64Value("SHOPAPI_NODE_ID", &cfg.System.NodeId)
	setEnvBoolValue("SHOPAPI_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("SHOPAPI_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("SHOPAPI_WEB_PORT", &cfg.Web.Port)

	setEnvValue("DATABASE_URL", &cfg.Database.URL)
	setEnvValue("SHOPAPI_DB_TYPE", &cfg.Database.Type)
	setEnvValue("SHOPAPI_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("SHOPAPI_DB_PORT", &cfg.Database.Port)
	setEnvValue("SHOPAPI_DB_NAME", &cfg.Database.Name)
	setEnvValue("SHOPAPI_DB_USER", &cfg.Database.User)
	setEnvValue("SHOPAPI_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("SHOPAPI_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("SHOPAPI_LOGGER_MODE", &cfg.Logger.Mode)
	if setEnvValue("SHOPAPI_LOGGER_FILE", &cfg.Logger.Filename) {
		cfg.Logger.FileEnable = true
	}

	setEnvValue("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	setEnvValue("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatId)
	setEnvValue("TELEGRAM_API_BASE", &cfg.Telegram.ApiBase)

	setEnvValue("UPLOAD_URL", &cfg.Storage.UploadURL)
	setEnvValue("CDN_BASE_URL", &cfg.Storage.CdnBase)
	setEnvValue("CDN_PROJECT_ID", &cfg.Storage.ProjectId)

	return &cfg, nil
}

func setEnvValue(name string, val *string) bool {
	var evalue = strings.TrimSpace(os.Getenv(name))
	if evalue == "" {
		return false
	}
	*val = evalue
	return true
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvInt64Value(name string, val *int64) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToInt64E(evalue)
	if err == nil {
		*val = p
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToIntE(evalue)
	if err == nil {
		*val = p
	}
}
