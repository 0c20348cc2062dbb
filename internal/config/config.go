// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port      string
	AppEnv    string
	PublicDir string

	MongoURI      string
	MongoDatabase string
	StorageDriver string
	DBTimeout     time.Duration

	JWTSecret string
	JWTExpire time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string

	Minio MinioConfig
}

type MinioConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	Bucket       string
	PublicURL    string
	MaxImageSize int64
}

func (c Config) Development() bool {
	return c.AppEnv == "" || c.AppEnv == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PUBLIC_DIR", "./public")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "palavra_do_dia")
	v.SetDefault("STORAGE_DRIVER", DriverMongo)
	v.SetDefault("DB_TIMEOUT", "10s")
	v.SetDefault("JWT_EXPIRE", "30d")
	v.SetDefault("ADMIN_NAME", "Administrador")
	v.SetDefault("ADMIN_EMAIL", "admin@palavradodia.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "palavra-images")
	v.SetDefault("MAX_IMAGE_SIZE", 5<<20)
}

// Load reads .env files (if any) into the process environment and builds
// the Config from it.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		AppEnv:        v.GetString("APP_ENV"),
		PublicDir:     v.GetString("PUBLIC_DIR"),
		MongoURI:      v.GetString("MONGODB_URI"),
		MongoDatabase: v.GetString("MONGODB_DATABASE"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DBTimeout:     v.GetDuration("DB_TIMEOUT"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		AdminName:     v.GetString("ADMIN_NAME"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		Minio: MinioConfig{
			Endpoint:     v.GetString("MINIO_ENDPOINT"),
			AccessKey:    v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:    v.GetString("MINIO_SECRET_KEY"),
			UseSSL:       v.GetBool("MINIO_USE_SSL"),
			Bucket:       v.GetString("MINIO_BUCKET"),
			PublicURL:    v.GetString("MINIO_PUBLIC_URL"),
			MaxImageSize: v.GetInt64("MAX_IMAGE_SIZE"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.StorageDriver != DriverMongo && cfg.StorageDriver != DriverMemory {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	expire, err := ParseExpiry(v.GetString("JWT_EXPIRE"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRE: %w", err)
	}
	cfg.JWTExpire = expire

	if cfg.DBTimeout <= 0 {
		cfg.DBTimeout = 10 * time.Second
	}
	if cfg.Minio.PublicURL == "" {
		scheme := "http"
		if cfg.Minio.UseSSL {
			scheme = "https"
		}
		cfg.Minio.PublicURL = scheme + "://" + cfg.Minio.Endpoint
	}
	cfg.Minio.PublicURL = strings.TrimRight(cfg.Minio.PublicURL, "/")

	return cfg, nil
}

var expiryPattern = regexp.MustCompile(`(?i)^(\d*\.?\d+)\s*([a-z]*)$`)

var expiryUnits = map[string]time.Duration{
	"ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"": time.Second, "s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
	"y": 8766 * time.Hour, "yr": 8766 * time.Hour, "yrs": 8766 * time.Hour,
	"year": 8766 * time.Hour, "years": 8766 * time.Hour,
}

// ParseExpiry accepts a number with an optional unit ("30d", "7 days",
// "1y", "3600" in seconds) or a Go duration ("1h30m").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if m := expiryPattern.FindStringSubmatch(s); m != nil {
		unit, ok := expiryUnits[strings.ToLower(m[2])]
		if !ok {
			return 0, fmt.Errorf("invalid expiry %q: unknown unit %q", s, m[2])
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
		}
		d := time.Duration(n * float64(unit))
		if d <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return d, nil
}
