package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Search      SearchConfig
	GeoIP       GeoIPConfig
	Geolocation GeolocationConfig
	Cache       CacheConfig
	View        ViewConfig
	Log         LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type SearchConfig struct {
	// EndpointURL - базовый URL внешнего поискового endpoint'а
	EndpointURL string
	// RequestTimeout - таймаут одного сетевого запроса
	RequestTimeout time.Duration
	// MinInterval - минимальный интервал между исходящими вызовами
	MinInterval time.Duration
	// OutboundRPS - лимит исходящих запросов к endpoint'у в секунду
	OutboundRPS float64
	// DefaultRadius - радиус по умолчанию до первого ввода пользователя
	DefaultRadius int
}

type GeoIPConfig struct {
	URL            string
	RequestTimeout time.Duration
}

type GeolocationConfig struct {
	// FixTimeout - таймаут одноразового фикса
	FixTimeout time.Duration
	// FixMaximumAge - допустимый возраст закешированного фикса
	FixMaximumAge time.Duration
	// WatchTimeout - таймаут одного обновления в watch-режиме
	WatchTimeout time.Duration
	// WatchMaximumAge - максимальная давность обновления из watch
	WatchMaximumAge time.Duration
}

type CacheConfig struct {
	SearchCacheTTL  time.Duration
	MaxEntries      int
	JanitorInterval time.Duration
}

type ViewConfig struct {
	// Locale определяет единицы расстояния в подписях: en* - мили, иначе км
	Locale string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Отсутствие .env не ошибка: вся конфигурация может прийти из окружения
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Search: SearchConfig{
			EndpointURL:    viper.GetString("SEARCH_ENDPOINT_URL"),
			RequestTimeout: time.Duration(viper.GetInt("SEARCH_REQUEST_TIMEOUT")) * time.Second,
			MinInterval:    time.Duration(viper.GetInt("SEARCH_MIN_INTERVAL_MS")) * time.Millisecond,
			OutboundRPS:    viper.GetFloat64("SEARCH_OUTBOUND_RPS"),
			DefaultRadius:  viper.GetInt("SEARCH_DEFAULT_RADIUS"),
		},
		GeoIP: GeoIPConfig{
			URL:            viper.GetString("GEOIP_URL"),
			RequestTimeout: time.Duration(viper.GetInt("GEOIP_REQUEST_TIMEOUT")) * time.Second,
		},
		Geolocation: GeolocationConfig{
			FixTimeout:      time.Duration(viper.GetInt("GEO_FIX_TIMEOUT")) * time.Second,
			FixMaximumAge:   time.Duration(viper.GetInt("GEO_FIX_MAX_AGE")) * time.Second,
			WatchTimeout:    time.Duration(viper.GetInt("GEO_WATCH_TIMEOUT")) * time.Second,
			WatchMaximumAge: time.Duration(viper.GetInt("GEO_WATCH_MAX_AGE")) * time.Second,
		},
		Cache: CacheConfig{
			SearchCacheTTL:  time.Duration(viper.GetInt("SEARCH_CACHE_TTL")) * time.Second,
			MaxEntries:      viper.GetInt("SEARCH_CACHE_MAX_ENTRIES"),
			JanitorInterval: time.Duration(viper.GetInt("SEARCH_CACHE_JANITOR_INTERVAL")) * time.Second,
		},
		View: ViewConfig{
			Locale: viper.GetString("VIEW_LOCALE"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Set default values if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Search.RequestTimeout == 0 {
		cfg.Search.RequestTimeout = 15 * time.Second
	}
	if cfg.Search.MinInterval == 0 {
		cfg.Search.MinInterval = 1000 * time.Millisecond
	}
	if cfg.Search.OutboundRPS == 0 {
		cfg.Search.OutboundRPS = 2
	}
	if cfg.Search.DefaultRadius == 0 {
		cfg.Search.DefaultRadius = 1000
	}
	if cfg.GeoIP.RequestTimeout == 0 {
		cfg.GeoIP.RequestTimeout = 5 * time.Second
	}
	if cfg.Geolocation.FixTimeout == 0 {
		cfg.Geolocation.FixTimeout = 10 * time.Second
	}
	if cfg.Geolocation.FixMaximumAge == 0 {
		cfg.Geolocation.FixMaximumAge = 60 * time.Second
	}
	if cfg.Geolocation.WatchTimeout == 0 {
		cfg.Geolocation.WatchTimeout = 10 * time.Second
	}
	if cfg.Geolocation.WatchMaximumAge == 0 {
		cfg.Geolocation.WatchMaximumAge = 30 * time.Second
	}
	if cfg.Cache.SearchCacheTTL == 0 {
		cfg.Cache.SearchCacheTTL = 20 * time.Minute
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 50
	}
	if cfg.Cache.JanitorInterval == 0 {
		cfg.Cache.JanitorInterval = 5 * time.Minute
	}
	if cfg.View.Locale == "" {
		cfg.View.Locale = "en-US"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
