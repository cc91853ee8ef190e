package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tcriess/lightspeed-rooms/globals"
)

const (
	envPrefix = "LSROOMS"

	defaultAddr          = "localhost:8000"
	defaultLogLevel      = "DEBUG"
	defaultDBType        = "sqlite"
	defaultDSN           = "lightspeed-rooms.db"
	defaultSessionPath   = ":memory:"
	defaultCookieName    = "sessionid"
	defaultSessionMaxAge = 14 * 24 * time.Hour
	defaultUploadDir     = "media"
	defaultURLPrefix     = "/media/"
	defaultMaxUpload     = 10 << 20
	defaultSweepSchedule = "@daily"
	defaultSweepGrace    = time.Hour
	defaultUserCacheSize = 256

	redactedValue = "<redacted>"
)

// Config is the global configuration object which is filled via the configuration file(s), the environment and
// the command line flags.
type Config struct {
	LogLevel          string            `mapstructure:"log_level"`
	HTTPConfig        HTTPConfig        `mapstructure:"http"`
	PersistenceConfig PersistenceConfig `mapstructure:"persistence"`
	SessionConfig     SessionConfig     `mapstructure:"session"`
	StorageConfig     StorageConfig     `mapstructure:"storage"`
	OIDCConfigs       []OIDCConfig      `mapstructure:"oidc"`
	UserCacheSize     int               `mapstructure:"user_cache_size"`
}

type HTTPConfig struct {
	Addr    string `mapstructure:"addr"`
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`
}

// PersistenceConfig selects the gorm dialect ("sqlite" or "postgres") and its DSN.
type PersistenceConfig struct {
	Type string `mapstructure:"type"`
	DSN  string `mapstructure:"dsn"`
}

// SessionConfig configures the BuntDB backed session store. Path may be ":memory:", in which case sessions do not
// survive a restart. FlockPath defaults to Path + ".lock" for file backed stores.
type SessionConfig struct {
	Path       string        `mapstructure:"path"`
	FlockPath  string        `mapstructure:"flock_path"`
	CookieName string        `mapstructure:"cookie_name"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	Secure     bool          `mapstructure:"secure"`
}

// StorageConfig configures where uploaded room images and avatars are kept and how orphaned files are swept.
type StorageConfig struct {
	UploadDir     string        `mapstructure:"upload_dir"`
	URLPrefix     string        `mapstructure:"url_prefix"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
	SweepGrace    time.Duration `mapstructure:"sweep_grace"`
}

// An OIDCConfig object configures an OpenID Connect provider that can be used to log in with an ID token instead
// of a password. The "email" claim of the verified token identifies the account.
type OIDCConfig struct {
	Name        string `mapstructure:"name"`
	ClientId    string `mapstructure:"client_id"`
	ProviderUrl string `mapstructure:"provider_url"`
}

func GetFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("configuration", pflag.ContinueOnError)
	flagSet.String("log-level", "", "log level (TRACE, DEBUG, INFO, WARN, ERROR)")
	flagSet.String("http.addr", "", "http service address (including port)")
	flagSet.String("http.ssl-cert", "", "SSL cert (optional)")
	flagSet.String("http.ssl-key", "", "SSL key (optional)")
	flagSet.String("persistence.type", "", "database type (sqlite or postgres)")
	flagSet.String("persistence.dsn", "", "database DSN")
	return flagSet
}

// wordSepNormalizeFunc allows for normalization of the flag names (which use - as a separator)
func wordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.Replace(name, "-", "_", -1))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("http.addr", defaultAddr)
	v.SetDefault("persistence.type", defaultDBType)
	v.SetDefault("persistence.dsn", defaultDSN)
	v.SetDefault("session.path", defaultSessionPath)
	v.SetDefault("session.cookie_name", defaultCookieName)
	v.SetDefault("session.max_age", defaultSessionMaxAge)
	v.SetDefault("storage.upload_dir", defaultUploadDir)
	v.SetDefault("storage.url_prefix", defaultURLPrefix)
	v.SetDefault("storage.max_upload_size", defaultMaxUpload)
	v.SetDefault("storage.sweep_schedule", defaultSweepSchedule)
	v.SetDefault("storage.sweep_grace", defaultSweepGrace)
	v.SetDefault("user_cache_size", defaultUserCacheSize)
}

// ReadConfiguration reads and parses the configuration located at configPath, which can either point to a single TOML
// file or to a directory, in which case all *.toml files in this directory are concatenated. Environment variables
// (prefixed with LSROOMS_) and the flags of flagSet take precedence over the file. flagSet may be nil.
func ReadConfiguration(configPath string, flagSet *pflag.FlagSet) (*Config, error) {
	cfg := Config{}
	v := viper.New()
	setDefaults(v)
	if flagSet != nil {
		flagSet.SetNormalizeFunc(wordSepNormalizeFunc)
		err := v.BindPFlags(flagSet)
		if err != nil {
			globals.AppLogger.Error("could not bind flags (ignored)", "error", err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configPath != "" {
		fi, err := os.Stat(configPath)
		if err != nil {
			return nil, err
		}
		contents := make([]byte, 0)
		files := []string{configPath}
		if fi.IsDir() {
			files, err = filepath.Glob(filepath.Join(configPath, "*.toml"))
			if err != nil {
				return nil, err
			}
		}
		for _, configFile := range files {
			fileContents, err := os.ReadFile(configFile)
			if err != nil {
				return nil, err
			}
			contents = append(contents, fileContents...)
			contents = append(contents, '\n')
		}
		v.SetConfigType("toml")
		err = v.ReadConfig(bytes.NewBuffer(contents))
		if err != nil {
			return nil, err
		}
	}
	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	globals.AppLogger.Debug("config", "cfg", cfg.redacted())
	return &cfg, nil
}

// redacted returns a copy of c which is safe to log: the database DSN may carry a password.
func (c Config) redacted() Config {
	if c.PersistenceConfig.DSN != "" {
		c.PersistenceConfig.DSN = redactedValue
	}
	return c
}

// OIDCConfig returns the provider configuration with the given name, or nil.
func (c *Config) OIDCConfig(name string) *OIDCConfig {
	for i := range c.OIDCConfigs {
		if c.OIDCConfigs[i].Name == name {
			return &c.OIDCConfigs[i]
		}
	}
	return nil
}
