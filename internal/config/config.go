// Package config assembles the service configuration from defaults,
// an optional JSON file, environment variables (with .env support)
// and command-line flags, in that order of increasing priority.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the contacts service.
type Config struct {
	RunAddr     string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	Port        string        `env:"PORT" json:"port" validate:"omitempty,numeric"`
	PublicURL   string        `env:"BASE_URL" json:"base_url" validate:"url"`
	LogLevel    string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	ConfigFile  string        `env:"CONFIG" json:"-"`
	CORSOrigins string        `env:"CORS_ALLOWED_ORIGINS" json:"cors_allowed_origins"`
	TrustedCIDR string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`
	AvatarsDir  string        `env:"AVATARS_DIR" json:"avatars_dir" validate:"required"`
	TmpDir      string        `env:"TMP_DIR" json:"tmp_dir" validate:"required"`
	JWTSecret   string        `env:"JWT_SECRET" json:"jwt_secret" validate:"required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" json:"token_ttl" validate:"gt=0"`

	MongoURI            string        `env:"DB_HOST" json:"db_host"`
	MongoDatabase       string        `env:"DB_NAME" json:"db_name"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"db_connection_timeout"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR" json:"migrations_dir"`

	MailgunAPIKey  string `env:"MAILGUN_API_KEY" json:"mailgun_api_key"`
	MailgunDomain  string `env:"MAILGUN_DOMAIN" json:"mailgun_domain" validate:"required_with=MailgunAPIKey"`
	MailgunBaseURL string `env:"MAILGUN_BASE_URL" json:"mailgun_base_url" validate:"url"`
	MailFrom       string `env:"MAIL_FROM" json:"mail_from"`

	S3Bucket    string `env:"S3_BUCKET" json:"s3_bucket"`
	S3Region    string `env:"S3_REGION" json:"s3_region"`
	S3Endpoint  string `env:"S3_ENDPOINT" json:"s3_endpoint" validate:"omitempty,url"`
	S3AccessKey string `env:"S3_ACCESS_KEY" json:"s3_access_key"`
	S3SecretKey string `env:"S3_SECRET_KEY" json:"s3_secret_key"`
}

var defaultConfig = Config{
	RunAddr:             ":3000",
	PublicURL:           "http://localhost:3000",
	LogLevel:            "info",
	CORSOrigins:         "*",
	AvatarsDir:          "public/avatars",
	TmpDir:              "tmp",
	TokenTTL:            time.Hour,
	MongoDatabase:       "contacts",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "cmd/contactsapi/migrations",
	MailgunBaseURL:      "https://api.mailgun.net",
	MailFrom:            "Contacts <no-reply@localhost>",
	S3Region:            "us-east-1",
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption configures how New collects the settings.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command-line flags. Tests use it to keep
// the go test flags away from the service flag set.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs replaces os.Args[1:] as the source of command-line flags.
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

// New builds the configuration. Priority: flags > environment > JSON file > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := os.Getenv("CONFIG")
	if !options.disableFlagsParsing {
		configFile = lookupConfigFlag(options.args, configFile)
	}
	if configFile != "" {
		if err := values.loadJSON(configFile); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(values); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	if values.Port != "" {
		values.RunAddr = ":" + values.Port
	}

	if !options.disableFlagsParsing {
		if err := values.parseFlags(options.args); err != nil {
			return nil, err
		}
	}

	values.ConfigFile = configFile
	values.PublicURL = strings.TrimRight(values.PublicURL, "/")

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

func (c *Config) loadJSON(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `os.ReadFile()` calling: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `json.Unmarshal()` calling: %w", err)
	}

	return nil
}

func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("contactsapi", flag.ContinueOnError)
	flags.String("c", "", "path to the JSON configuration file")
	flags.StringVar(&c.RunAddr, "a", c.RunAddr, "address and port to run server")
	flags.StringVar(&c.PublicURL, "b", c.PublicURL, "public base URL used in verification links")
	flags.StringVar(&c.LogLevel, "l", c.LogLevel, "logger level")
	flags.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "PostgreSQL connection string")
	flags.StringVar(&c.MongoURI, "m", c.MongoURI, "MongoDB connection URI")
	flags.StringVar(&c.DBFileName, "f", c.DBFileName, "JSON file name with database")
	flags.StringVar(&c.TrustedCIDR, "t", c.TrustedCIDR, "trusted subnet in CIDR notation")

	return flags.Parse(args)
}

// lookupConfigFlag finds -c ahead of the full flag parse, because
// the JSON file has to be applied before the environment and the flags.
func lookupConfigFlag(args []string, fallback string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "c" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}

	return fallback
}
