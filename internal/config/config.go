package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	log "url2pdf/internal/infra/logging"
)

// Fallback values used when neither the config file nor the environment
// provides one. Production deployments must override all of them.
const (
	DefaultSecret   = "segredo-super-secreto"
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
	DefaultTokenTTL = 30 * time.Minute
	DefaultRole     = "admin"
)

// Readiness conditions accepted by pdf.wait_until.
const (
	WaitNetworkIdle0 = "networkidle0"
	WaitNetworkIdle2 = "networkidle2"
)

// PaperSize is expressed in inches, the unit Chrome's PrintToPDF expects.
type PaperSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// AuthConfig holds the credentials checked by /login and the JWT settings.
type AuthConfig struct {
	Required bool          `yaml:"required"`
	Secret   string        `yaml:"secret"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Role     string        `yaml:"role"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// PDFConfig controls how a renderer instance is launched and how pages are printed.
type PDFConfig struct {
	ChromePath     string    `yaml:"chrome_path"`
	NoSandbox      bool      `yaml:"chrome_no_sandbox"`
	DisableGPU     bool      `yaml:"disable_gpu"`
	UserDataDir    string    `yaml:"user_data_dir"`
	ViewportWidth  int64     `yaml:"viewport_width"`
	ViewportHeight int64     `yaml:"viewport_height"`
	Media          string    `yaml:"media"`
	WaitUntil      string    `yaml:"wait_until"`
	TimeoutSecs    int       `yaml:"timeout_secs"`
	Paper          PaperSize `yaml:"paper"`
	MarginCm       float64   `yaml:"margin_cm"`
	Filename       string    `yaml:"filename"`
	MaxConcurrent  int       `yaml:"max_concurrent"`
}

// Config is built once at startup and passed by value afterwards.
type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Prefork bool   `yaml:"prefork"`
	} `yaml:"server"`
	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`
	Auth        AuthConfig `yaml:"auth"`
	PDF         PDFConfig  `yaml:"pdf"`
	RateLimiter struct {
		Enabled  bool          `yaml:"enabled"`
		Max      int           `yaml:"max"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"rate_limiter"`
	Cache struct {
		RedisHost   string `yaml:"redis_host"`
		RateLimitDB int    `yaml:"redis_rate_db"`
	} `yaml:"cache"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = ":3000"
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 7

	cfg.Auth = AuthConfig{
		Required: true,
		Secret:   DefaultSecret,
		Username: DefaultUsername,
		Password: DefaultPassword,
		Role:     DefaultRole,
		TokenTTL: DefaultTokenTTL,
	}

	cfg.PDF = PDFConfig{
		NoSandbox:      true,
		DisableGPU:     true,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Media:          "screen",
		WaitUntil:      WaitNetworkIdle2,
		TimeoutSecs:    60,
		Paper:          PaperSize{Width: 8.27, Height: 11.69},
		MarginCm:       1,
		Filename:       "documento.pdf",
	}

	cfg.RateLimiter.Max = 60
	cfg.RateLimiter.Interval = time.Minute
	return cfg
}

// Load reads the file named by CONFIG_PATH, or ./config.yaml when present,
// and applies environment overrides on top.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err != nil {
			cfg := Default()
			applyEnv(&cfg)
			mustValidate(cfg)
			return cfg
		}
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadFrom reads a YAML file over the defaults and applies environment
// overrides. It panics when the file is unreadable or the result is invalid.
func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}
	applyEnv(&cfg)
	mustValidate(cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("LOGIN_USUARIO"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("LOGIN_SENHA"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		ttl, err := parseTTL(v)
		if err != nil {
			log.Warn("Ignoring JWT_EXPIRES_IN, keeping configured token lifetime",
				"value", v, "token_ttl", cfg.Auth.TokenTTL.String(), "error", err)
		} else {
			cfg.Auth.TokenTTL = ttl
		}
	}
	if v := os.Getenv("AUTH_REQUIRED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.Required = b
		}
	}
	if v := os.Getenv("CHROME_BIN"); v != "" && cfg.PDF.ChromePath == "" {
		cfg.PDF.ChromePath = v
	}
}

// parseTTL accepts a positive Go duration such as "45m" or "1h30m".
func parseTTL(v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", v)
	}
	return d, nil
}

func mustValidate(cfg Config) {
	if err := cfg.Validate(); err != nil {
		panic("config: " + err.Error())
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Auth.Secret == "":
		return errors.New("auth.secret must not be empty")
	case c.Auth.TokenTTL <= 0:
		return errors.New("auth.token_ttl must be positive")
	case c.PDF.TimeoutSecs <= 0:
		return errors.New("pdf.timeout_secs must be positive")
	case c.PDF.MaxConcurrent < 0:
		return errors.New("pdf.max_concurrent must not be negative")
	case c.PDF.WaitUntil != WaitNetworkIdle0 && c.PDF.WaitUntil != WaitNetworkIdle2:
		return fmt.Errorf("pdf.wait_until must be %q or %q", WaitNetworkIdle0, WaitNetworkIdle2)
	case c.PDF.Paper.Width <= 0 || c.PDF.Paper.Height <= 0:
		return errors.New("pdf.paper must have positive width and height")
	case c.RateLimiter.Enabled && (c.RateLimiter.Max <= 0 || c.RateLimiter.Interval <= 0):
		return errors.New("rate_limiter.max and rate_limiter.interval must be positive when enabled")
	}
	return nil
}

// FallbackCredentials lists the auth settings still at their built-in values.
func (a AuthConfig) FallbackCredentials() []string {
	var out []string
	if a.Secret == DefaultSecret {
		out = append(out, "secret")
	}
	if a.Username == DefaultUsername {
		out = append(out, "username")
	}
	if a.Password == DefaultPassword {
		out = append(out, "password")
	}
	return out
}

// Timeout is the navigation budget for one conversion.
func (p PDFConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// MarginInches converts the configured margin for PrintToPDF.
func (p PDFConfig) MarginInches() float64 {
	return p.MarginCm / 2.54
}
