package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment override, e.g. DISPATCHD_ADDR.
const EnvPrefix = "DISPATCHD"

// envOverrides mirrors the scalar Config fields that may be set from the
// environment. Unset variables leave the file value untouched.
type envOverrides struct {
	Addr            string   `envconfig:"ADDR"`
	LogLevel        string   `envconfig:"LOG_LEVEL"`
	LogFormat       string   `envconfig:"LOG_FORMAT"`
	MaxBodyBytes    int64    `envconfig:"MAX_BODY_BYTES"`
	DataDir         string   `envconfig:"DATA_DIR"`
	SpoolDir        string   `envconfig:"SPOOL_DIR"`
	ShutdownTimeout string   `envconfig:"SHUTDOWN_TIMEOUT"`
	DefaultCapacity int      `envconfig:"DEFAULT_CAPACITY"`
	JournalLimit    int      `envconfig:"JOURNAL_LIMIT"`
	CORSEnabled     *bool    `envconfig:"CORS_ENABLED"`
	CORSOrigins     []string `envconfig:"CORS_ORIGINS"`
}

// ApplyEnv overlays DISPATCHD_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}
	setString(&cfg.Addr, env.Addr)
	setString(&cfg.LogLevel, env.LogLevel)
	setString(&cfg.LogFormat, env.LogFormat)
	setString(&cfg.DataDir, env.DataDir)
	setString(&cfg.SpoolDir, env.SpoolDir)
	setString(&cfg.ShutdownTimeout, env.ShutdownTimeout)
	if env.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = env.MaxBodyBytes
	}
	if env.DefaultCapacity > 0 {
		cfg.DefaultCapacity = env.DefaultCapacity
	}
	if env.JournalLimit > 0 {
		cfg.JournalLimit = env.JournalLimit
	}
	if env.CORSEnabled != nil {
		cfg.CORS.Enabled = *env.CORSEnabled
	}
	if len(env.CORSOrigins) > 0 {
		cfg.CORS.Origins = env.CORSOrigins
	}
	return nil
}

// LoadDotenv loads variables from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
