package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Database DatabaseConfig `yaml:"database"`
	Report   ReportConfig   `yaml:"report"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// UpstreamConfig points at the external identity + report-generation backend.
type UpstreamConfig struct {
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type ReportConfig struct {
	MaxImages        int           `yaml:"max_images"`
	MaxImageSizeMB   int           `yaml:"max_image_size_mb"`
	ProgressTick     time.Duration `yaml:"progress_tick"`
	BannerResetDelay time.Duration `yaml:"banner_reset_delay"`
}

// UnmarshalYAML accepts durations as strings ("200ms", "3s"). Keys the file
// omits keep whatever value the struct already holds.
func (r *ReportConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		MaxImages        *int   `yaml:"max_images"`
		MaxImageSizeMB   *int   `yaml:"max_image_size_mb"`
		ProgressTick     string `yaml:"progress_tick"`
		BannerResetDelay string `yaml:"banner_reset_delay"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.MaxImages != nil {
		r.MaxImages = *raw.MaxImages
	}
	if raw.MaxImageSizeMB != nil {
		r.MaxImageSizeMB = *raw.MaxImageSizeMB
	}
	if raw.ProgressTick != "" {
		d, err := time.ParseDuration(raw.ProgressTick)
		if err != nil {
			return fmt.Errorf("progress_tick: %w", err)
		}
		r.ProgressTick = d
	}
	if raw.BannerResetDelay != "" {
		d, err := time.ParseDuration(raw.BannerResetDelay)
		if err != nil {
			return fmt.Errorf("banner_reset_delay: %w", err)
		}
		r.BannerResetDelay = d
	}
	return nil
}

func Load(configFile string) *Config {
	// .env is optional; deployments normally use the real environment.
	godotenv.Load()

	c := &Config{
		Server:   ServerConfig{Port: 9872},
		Upstream: UpstreamConfig{BaseURL: "http://3.128.160.75:8000"},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{Port: 3306, Name: "inspectoriq"},
		Report: ReportConfig{
			MaxImages:        13,
			MaxImageSizeMB:   10,
			ProgressTick:     200 * time.Millisecond,
			BannerResetDelay: 3 * time.Second,
		},
	}

	paths := []string{"etc/config-dev.yaml", "/etc/inspectoriq/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.Upstream.BaseURL, "UPSTREAM_BASE_URL")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASS")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverrideInt(&c.Report.MaxImages, "REPORT_MAX_IMAGES")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	cfg := gomysql.NewConfig()
	cfg.User = c.Database.User
	cfg.Passwd = c.Database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	cfg.DBName = c.Database.Name
	cfg.ParseTime = true

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
