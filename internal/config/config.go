package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DefaultOutputDir       = "target/ferrisdoc"
	DefaultExternalBaseURL = "https://docs.rs"
)

type HighlightConfig struct {
	Style           string `mapstructure:"style"`
	PrimaryLanguage string `mapstructure:"primary_language"`
}

type FetchConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config controls a render. It is read once and not modified while pages
// are being rendered.
type Config struct {
	OutputDir           string          `mapstructure:"output_dir"`
	ExternalBaseURL     string          `mapstructure:"external_base_url"`
	IncludePrivate      bool            `mapstructure:"include_private"`
	IncludeForeignImpls bool            `mapstructure:"include_foreign_impls"`
	CrateVersion        string          `mapstructure:"crate_version"`
	Jobs                int             `mapstructure:"jobs"`
	Highlight           HighlightConfig `mapstructure:"highlight"`
	Fetch               FetchConfig     `mapstructure:"fetch"`
	Serve               ServeConfig     `mapstructure:"serve"`
}

// Default returns the configuration used when no file, env, or flag
// overrides anything.
func Default() *Config {
	return &Config{
		OutputDir:       DefaultOutputDir,
		ExternalBaseURL: DefaultExternalBaseURL,
		Highlight: HighlightConfig{
			Style:           "github",
			PrimaryLanguage: "rust",
		},
		Fetch: FetchConfig{
			BaseURL:        DefaultExternalBaseURL,
			TimeoutSeconds: 60,
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Workers returns the page render concurrency.
func (c *Config) Workers() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if u, err := url.Parse(c.ExternalBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("external_base_url %q is not an absolute URL", c.ExternalBaseURL))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must be >= 0, got %d", c.Jobs))
	}
	return errors.Join(errs...)
}

// cacheBase returns the base cache directory for ferrisdoc.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/ferrisdoc as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "ferrisdoc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "ferrisdoc")
	}
	return filepath.Join(os.TempDir(), "ferrisdoc")
}

// JSONCacheDir returns the path to the downloaded rustdoc JSON cache.
func JSONCacheDir() string {
	return filepath.Join(cacheBase(), "json")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "ferrisdoc"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "ferrisdoc"))
	}

	def := Default()
	viper.SetDefault("output_dir", def.OutputDir)
	viper.SetDefault("external_base_url", def.ExternalBaseURL)
	viper.SetDefault("include_private", false)
	viper.SetDefault("include_foreign_impls", false)
	viper.SetDefault("crate_version", "")
	viper.SetDefault("jobs", 0)
	viper.SetDefault("highlight.style", def.Highlight.Style)
	viper.SetDefault("highlight.primary_language", def.Highlight.PrimaryLanguage)
	viper.SetDefault("fetch.base_url", def.Fetch.BaseURL)
	viper.SetDefault("fetch.timeout_seconds", def.Fetch.TimeoutSeconds)
	viper.SetDefault("serve.addr", def.Serve.Addr)

	viper.SetEnvPrefix("FERRISDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// expandHomeHookFunc expands a leading "~/" in string settings.
func expandHomeHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.String {
			return data, nil
		}
		s := data.(string)
		if !strings.HasPrefix(s, "~/") {
			return data, nil
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, s[2:]), nil
		}
		return data, nil
	}
}

// Decode converts a settings map (as produced by viper.AllSettings) into
// a Config.
func Decode(settings map[string]interface{}) (*Config, error) {
	config := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       expandHomeHookFunc(),
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}
	return Decode(viper.AllSettings())
}
