package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultRequestTimeout  = 30 * time.Second
	defaultFetchTimeout    = 8 * time.Second
	defaultGalleryInterval = 5 * time.Second
	defaultTemplatesDir    = "templates"
	defaultPublicDir       = "public"
	defaultContentDir      = "content"
	defaultLocalesDir      = "locales"
	defaultSiteName        = "Ace Software Solutions"
	defaultLocale          = "en"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Site      SiteConfig
	Paths     PathsConfig
	Analytics AnalyticsConfig
	Dev       bool
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// APIConfig points the site at the product API.
type APIConfig struct {
	BaseURL         string
	FetchTimeout    time.Duration
	GalleryInterval time.Duration
}

// SiteConfig holds values surfaced in page metadata.
type SiteConfig struct {
	Name          string
	URL           string
	DefaultLocale string
	Locales       []string
}

// PathsConfig lists on-disk directories read at runtime.
type PathsConfig struct {
	Templates string
	Public    string
	Content   string
	Locales   string
}

// AnalyticsConfig holds client instrumentation identifiers.
type AnalyticsConfig struct {
	GA4MeasurementID string
	GTMContainerID   string
	Debug            bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the dotenv file consulted after the process environment.
// An empty path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies values that take precedence over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration from an explicit map, the process environment and
// finally a dotenv file, then validates it. A missing API base URL is an error.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Port resolution: prefer WEB_PORT, then the platform's PORT.
	port := stringWithDefault(lookup, "WEB_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           port,
			ReadTimeout:    durationWithDefault(lookup, "WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "WEB_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		API: APIConfig{
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, "API_BASE_URL", ""), "/"),
			FetchTimeout:    durationWithDefault(lookup, "WEB_FETCH_TIMEOUT", defaultFetchTimeout),
			GalleryInterval: durationWithDefault(lookup, "WEB_GALLERY_INTERVAL", defaultGalleryInterval),
		},
		Site: SiteConfig{
			Name:          stringWithDefault(lookup, "WEB_SITE_NAME", defaultSiteName),
			URL:           strings.TrimRight(stringWithDefault(lookup, "WEB_SITE_URL", ""), "/"),
			DefaultLocale: strings.ToLower(stringWithDefault(lookup, "WEB_DEFAULT_LOCALE", defaultLocale)),
			Locales:       csvWithDefault(lookup, "WEB_LOCALES"),
		},
		Paths: PathsConfig{
			Templates: stringWithDefault(lookup, "WEB_TEMPLATES_DIR", defaultTemplatesDir),
			Public:    stringWithDefault(lookup, "WEB_PUBLIC_DIR", defaultPublicDir),
			Content:   stringWithDefault(lookup, "WEB_CONTENT_DIR", defaultContentDir),
			Locales:   stringWithDefault(lookup, "WEB_LOCALES_DIR", defaultLocalesDir),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "WEB_GA_MEASUREMENT_ID", ""),
			GTMContainerID:   stringWithDefault(lookup, "WEB_GTM_CONTAINER_ID", ""),
			Debug:            boolWithDefault(lookup, "WEB_ANALYTICS_DEBUG", false),
		},
		Dev: boolWithDefault(lookup, "WEB_DEV", false),
	}
	if len(cfg.Site.Locales) == 0 {
		cfg.Site.Locales = []string{cfg.Site.DefaultLocale}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Server.Port
}

func validateConfig(cfg Config) error {
	var missing []string
	if !isAbsoluteHTTPURL(cfg.API.BaseURL) {
		missing = append(missing, "API_BASE_URL")
	}
	if cfg.Site.URL != "" && !isAbsoluteHTTPURL(cfg.Site.URL) {
		missing = append(missing, "WEB_SITE_URL")
	}
	if cfg.API.FetchTimeout <= 0 {
		missing = append(missing, "WEB_FETCH_TIMEOUT")
	}
	if cfg.API.GalleryInterval <= 0 {
		missing = append(missing, "WEB_GALLERY_INTERVAL")
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "WEB_PORT")
	}
	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isAbsoluteHTTPURL(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
