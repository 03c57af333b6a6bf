package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr       string
		Port       int
		CORSOrigin string
	}
	Database struct {
		Driver       string
		URL          string
		CAPath       string
		MaxOpenConns int
		Path         string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  string
	}
	Log struct {
		Level  string
		Format string
	}
}

// legacyEnv maps config keys to the variable names used by the previous backend deployment.
var legacyEnv = map[string]string{
	"server.port":       "PORT",
	"server.corsorigin": "CORS_ORIGIN",
	"database.url":      "DATABASE_URL",
	"database.capath":   "MYSQL_CA_PATH",
	"auth.jwtsecret":    "JWT_SECRET",
	"auth.tokenttl":     "JWT_EXPIRES_IN",
}

// Load reads configuration from environment variables and an optional config
// file. When configFile is empty a file named "config" in the working
// directory is used if present.
func Load(configFile string) (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("IMPRONTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:4000")
	v.SetDefault("server.port", 0)
	v.SetDefault("server.corsorigin", "*")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.url", "")
	v.SetDefault("database.capath", "")
	v.SetDefault("database.maxopenconns", 10)
	v.SetDefault("database.path", "data/impronta.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", "15m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for key, legacy := range legacyEnv {
		prefixed := "IMPRONTA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Server.Port > 0 {
		host, _, err := net.SplitHostPort(cfg.Server.Addr)
		if err != nil {
			host = ""
		}
		cfg.Server.Addr = net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port))
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	switch c.Database.Driver {
	case "mysql":
		if strings.TrimSpace(c.Database.URL) == "" {
			return fmt.Errorf("database url is required for the mysql driver")
		}
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// loadDotEnv fills unset variables from a .env file in the working
// directory. A missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}
