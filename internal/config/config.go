package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/floorheat-backend-go/internal/raster"
)

// Config 应用配置
type Config struct {
	Port         string   `yaml:"port"`
	DBPath       string   `yaml:"db_path"`
	JWTSecret    string   `yaml:"jwt_secret"`
	FloorplanDir string   `yaml:"floorplan_dir"` // 平面图图片目录
	CORSOrigins  []string `yaml:"cors_origins"`

	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`

	Heatmap HeatmapConfig  `yaml:"heatmap"`
	Render  raster.Options `yaml:"render"`
	Canvas  CanvasConfig   `yaml:"canvas"`

	SessionTTL time.Duration `yaml:"session_ttl"` // 交互会话过期时间
}

// HeatmapConfig 热力图与停留分析参数
type HeatmapConfig struct {
	GridSize              float64 `yaml:"grid_size"`               // 米
	DwellSpatialThreshold float64 `yaml:"dwell_spatial_threshold"` // 米
	DwellMinTime          int64   `yaml:"dwell_min_time"`          // 秒
	MaxRawPoints          int     `yaml:"max_raw_points"`
}

// CanvasConfig 默认画布尺寸
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Port:         ":8080",
		DBPath:       "./data/floorheat.db",
		JWTSecret:    "your-secret-key-change-in-production",
		FloorplanDir: "./data/floorplans",
		CORSOrigins:  []string{"*"},
		RateLimit:    120,
		RateWindow:   time.Minute,
		Heatmap: HeatmapConfig{
			GridSize:              1.0,
			DwellSpatialThreshold: 2.0,
			DwellMinTime:          30,
			MaxRawPoints:          250000,
		},
		Render:     raster.DefaultOptions(),
		Canvas:     CanvasConfig{Width: 800, Height: 600},
		SessionTTL: 30 * time.Minute,
	}
}

// Load 加载配置: 默认值 -> CONFIG_FILE -> 环境变量
func Load() *Config {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			log.Printf("[Config] Warning: %v, using defaults", err)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg
}

// LoadFile overlays the YAML file at path onto cfg
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return c.Overlay(data)
}

// Overlay decodes YAML onto cfg; keys not present keep their value
func (c *Config) Overlay(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Port = v
	}
	if v := getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := getenv("FLOORPLAN_DIR"); v != "" {
		c.FloorplanDir = v
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}

	envInt(getenv, "RATE_LIMIT", &c.RateLimit)
	envDuration(getenv, "RATE_WINDOW", &c.RateWindow)
	envDuration(getenv, "SESSION_TTL", &c.SessionTTL)
	envFloat(getenv, "HEATMAP_GRID_SIZE", &c.Heatmap.GridSize)
	envFloat(getenv, "DWELL_SPATIAL_THRESHOLD", &c.Heatmap.DwellSpatialThreshold)
	envInt64(getenv, "DWELL_MIN_TIME", &c.Heatmap.DwellMinTime)
	envInt(getenv, "MAX_RAW_POINTS", &c.Heatmap.MaxRawPoints)
}

func envInt(getenv func(string) string, key string, dst *int) {
	if v := getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("[Config] Warning: invalid %s=%q: %v", key, v, err)
			return
		}
		*dst = n
	}
}

func envInt64(getenv func(string) string, key string, dst *int64) {
	if v := getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("[Config] Warning: invalid %s=%q: %v", key, v, err)
			return
		}
		*dst = n
	}
}

func envFloat(getenv func(string) string, key string, dst *float64) {
	if v := getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("[Config] Warning: invalid %s=%q: %v", key, v, err)
			return
		}
		*dst = f
	}
}

func envDuration(getenv func(string) string, key string, dst *time.Duration) {
	if v := getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("[Config] Warning: invalid %s=%q: %v", key, v, err)
			return
		}
		*dst = d
	}
}
