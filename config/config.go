// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"sharefile/share-api/internal/plan"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath        = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "minio"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// keys that can be overridden from the environment, app.log_level -> APP_LOG_LEVEL
var envKeys = []string{
	"app.log_level",
	"app.env",
	"app.log_file",

	"host.port",
	"host.cors_origins",

	"jwt.secret",

	"db.driver",
	"db.dsn",

	"storage.type",
	"storage.bucket",
	"storage.region",
	"storage.endpoint",
	"storage.access_key_id",
	"storage.secret_access_key",
	"storage.use_ssl",
	"storage.path_style",
	"storage.public_url",

	"upload.max_size",
	"upload.allowed_types",

	"plans.basic_retention",

	"sweeper.interval",
	"sweeper.trigger_secret",

	"reconcile.interval",
	"reconcile.grace",

	"security.rate_limit",

	"cloudflare.turnstile.enabled",
	"cloudflare.turnstile.secret_token",
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range envKeys {
		v.BindEnv(k)
	}

	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using defaults and environment variables")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret. It has to match the one of your auth provider. A random one for testing:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if err := Validate(); err != nil {
		return err
	}

	if !v.GetBool("cloudflare.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Some public endpoints won't be guarded against bots")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

func SetDefaults() {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "development")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_ssl", true)

	// MB. Must at least fit the largest plan
	v.SetDefault("upload.max_size", 100)

	v.SetDefault("plans.basic_retention", "24h")

	// 0 disables the in process jobs, the HTTP triggers always work
	v.SetDefault("sweeper.interval", "0s")
	v.SetDefault("reconcile.interval", "0s")
	v.SetDefault("reconcile.grace", "1h")

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("cloudflare.turnstile.enabled", false)
}

// Validate checks the loaded values. Sizes are still in MB at this point
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if largest := plan.Default().LargestFile() / plan.MB; v.GetInt64("upload.max_size") < largest {
		return fmt.Errorf("upload.max_size must be at least %d (MB) to fit the largest plan", largest)
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.driver") == "postgres" && v.GetString("db.dsn") == "" {
		return errors.New("db.dsn is required for postgres")
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetString("storage.bucket") == "" {
		return errors.New("bucket can't be empty")
	}

	if v.GetString("storage.access_key_id") == "" {
		return errors.New("storage access key id can't be empty")
	}

	if v.GetString("storage.secret_access_key") == "" {
		return errors.New("storage secret access key can't be empty")
	}

	if v.GetString("storage.type") == "minio" && v.GetString("storage.endpoint") == "" {
		return errors.New("storage.endpoint is required for minio")
	}

	for _, k := range []string{"plans.basic_retention", "sweeper.interval", "reconcile.interval", "reconcile.grace"} {
		d, err := time.ParseDuration(v.GetString(k))
		if err != nil {
			return fmt.Errorf("%s is not a valid duration, %w", k, err)
		}

		if d < 0 {
			return fmt.Errorf("%s can't be negative", k)
		}
	}

	if v.GetDuration("plans.basic_retention") == 0 {
		return errors.New("plans.basic_retention must be bigger than 0")
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}
