// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
)

// Config is the explicit configuration passed into every constructor.
// Nothing in the application reads process-global state after startup.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Page        PageConfig        `mapstructure:"page" yaml:"page"`
	Site        SiteConfig        `mapstructure:"site" yaml:"site"`
	Screenshots ScreenshotsConfig `mapstructure:"screenshots" yaml:"screenshots"`
	Ad          AdConfig          `mapstructure:"ad" yaml:"ad"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig tunes the HTTP boundary.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	CORSOrigin      string        `mapstructure:"cors_origin" yaml:"cors_origin"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// PublishRate is the sustained publish requests/second the boundary
	// admits; PublishBurst the momentary excess. Each run costs one full
	// browser instance, so this defaults very low.
	PublishRate  float64 `mapstructure:"publish_rate" yaml:"publish_rate"`
	PublishBurst int     `mapstructure:"publish_burst" yaml:"publish_burst"`
}

// BrowserConfig holds settings for the headless browser process.
type BrowserConfig struct {
	Headless    bool     `mapstructure:"headless" yaml:"headless"`
	Args        []string `mapstructure:"args" yaml:"args"`
	// MaxSessions caps concurrent publish sessions; each one owns a tab in
	// the shared browser process.
	MaxSessions       int64         `mapstructure:"max_sessions" yaml:"max_sessions"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// PageConfig is the per-page emulation profile.
type PageConfig struct {
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	ViewportWidth     int64         `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    int64         `mapstructure:"viewport_height" yaml:"viewport_height"`
	JavaScriptEnabled bool          `mapstructure:"javascript_enabled" yaml:"javascript_enabled"`
	SlowMo            time.Duration `mapstructure:"slow_mo" yaml:"slow_mo"`
}

// SiteConfig names the target site's surfaces and the step timeout policy.
type SiteConfig struct {
	LoginURL    string `mapstructure:"login_url" yaml:"login_url"`
	RedirectURL string `mapstructure:"redirect_url" yaml:"redirect_url"`
	HomeURL     string `mapstructure:"home_url" yaml:"home_url"`
	WizardURL   string `mapstructure:"wizard_url" yaml:"wizard_url"`
	// StepTimeout bounds every individual wait/click/type step so a hung
	// step cannot strand a session. UploadTimeout bounds the photo-upload
	// completion poll separately.
	StepTimeout   time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`
	UploadTimeout time.Duration `mapstructure:"upload_timeout" yaml:"upload_timeout"`
}

// ScreenshotsConfig locates the persisted audit trail.
type ScreenshotsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// AdConfig carries the fixed vehicle attributes for this deployment. Price
// and description arrive with each request.
type AdConfig struct {
	Type       string   `mapstructure:"type" yaml:"type"`
	Brand      string   `mapstructure:"brand" yaml:"brand"`
	Model      string   `mapstructure:"model" yaml:"model"`
	Subtype    string   `mapstructure:"subtype" yaml:"subtype"`
	Year       string   `mapstructure:"year" yaml:"year"`
	Province   string   `mapstructure:"province" yaml:"province"`
	City       string   `mapstructure:"city" yaml:"city"`
	Mileage    string   `mapstructure:"mileage" yaml:"mileage"`
	PhotoPaths []string `mapstructure:"photo_paths" yaml:"photo_paths"`
}

// CredentialsConfig is bound from the environment, never from the config
// file on disk.
type CredentialsConfig struct {
	Email    string `mapstructure:"email" yaml:"-"`
	Password string `mapstructure:"password" yaml:"-"`
}

// AdData assembles the machine input from the fixed deployment attributes
// plus the caller-supplied price and description.
func (a AdConfig) AdData(price float64, description string) schemas.AdData {
	return schemas.AdData{
		Type:        a.Type,
		Brand:       a.Brand,
		Model:       a.Model,
		Subtype:     a.Subtype,
		Year:        a.Year,
		Province:    a.Province,
		City:        a.City,
		Mileage:     a.Mileage,
		Price:       price,
		Description: description,
		PhotoPaths:  append([]string(nil), a.PhotoPaths...),
	}
}

// PageOptions converts the emulation profile into the schema shape the
// session controller applies.
func (p PageConfig) PageOptions() schemas.PageOptions {
	return schemas.PageOptions{
		UserAgent:         p.UserAgent,
		Viewport:          schemas.Viewport{Width: p.ViewportWidth, Height: p.ViewportHeight},
		JavaScriptEnabled: p.JavaScriptEnabled,
		SlowMo:            p.SlowMo,
	}
}

// Credentials returns the per-session credential value.
func (c CredentialsConfig) Credentials() schemas.Credentials {
	return schemas.Credentials{Email: c.Email, Password: c.Password}
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "snpublisher")
	v.SetDefault("logger.log_file", "snpublisher.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Server --
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.cors_origin", "http://localhost:3000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.publish_rate", 0.2)
	v.SetDefault("server.publish_burst", 2)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.args", []string{"--disable-notifications"})
	v.SetDefault("browser.max_sessions", 2)
	v.SetDefault("browser.navigation_timeout", "90s")

	// -- Page --
	v.SetDefault("page.user_agent", schemas.DefaultPageOptions.UserAgent)
	v.SetDefault("page.viewport_width", 1800)
	v.SetDefault("page.viewport_height", 900)
	v.SetDefault("page.javascript_enabled", true)
	v.SetDefault("page.slow_mo", "30ms")

	// -- Site --
	v.SetDefault("site.login_url", "https://admin.seminuevos.com/login")
	v.SetDefault("site.redirect_url", "https://admin.seminuevos.com/redirect")
	v.SetDefault("site.home_url", "https://www.seminuevos.com/")
	v.SetDefault("site.wizard_url", "https://www.seminuevos.com/wizard")
	v.SetDefault("site.step_timeout", "30s")
	v.SetDefault("site.upload_timeout", "60s")

	// -- Screenshots --
	v.SetDefault("screenshots.dir", "resources/screenshots")

	// -- Ad (fixed vehicle attributes for this deployment) --
	v.SetDefault("ad.type", "Autos")
	v.SetDefault("ad.brand", "Acura")
	v.SetDefault("ad.model", "ILX")
	v.SetDefault("ad.subtype", "Sedán")
	v.SetDefault("ad.year", "2018")
	v.SetDefault("ad.province", "Nuevo León")
	v.SetDefault("ad.city", "Monterrey")
	v.SetDefault("ad.mileage", "20000")
	v.SetDefault("ad.photo_paths", []string{})
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Credentials only ever come from the environment.
	v.BindEnv("credentials.email", "SNPUB_EMAIL")
	v.BindEnv("credentials.password", "SNPUB_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Browser.MaxSessions <= 0 {
		return fmt.Errorf("browser.max_sessions must be a positive integer")
	}
	if c.Site.StepTimeout <= 0 {
		return fmt.Errorf("site.step_timeout must be a positive duration")
	}
	if c.Site.UploadTimeout <= 0 {
		return fmt.Errorf("site.upload_timeout must be a positive duration")
	}
	if c.Site.LoginURL == "" || c.Site.HomeURL == "" || c.Site.WizardURL == "" {
		return fmt.Errorf("site.login_url, site.home_url and site.wizard_url are required")
	}
	if c.Server.PublishRate <= 0 {
		return fmt.Errorf("server.publish_rate must be positive")
	}
	return nil
}
