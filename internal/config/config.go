package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/validator"
)

type EnvironmentConfig struct {
	APIURL  string        `mapstructure:"api_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
}

type EnvironmentsConfig struct {
	Development *EnvironmentConfig `mapstructure:"development" validate:"required"`
	Production  *EnvironmentConfig `mapstructure:"production"  validate:"required"`
}

type FormConfig struct {
	Environments *EnvironmentsConfig `mapstructure:"environments" validate:"required"`
	// Environment signal. Falls back to the machine host name when empty.
	Host string `mapstructure:"host"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"          validate:"required"`
	AccessKeyID     string `mapstructure:"access_key_id"     validate:"required"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required"`
	BucketName      string `mapstructure:"bucket_name"       validate:"required"`
	DisableSSL      bool   `mapstructure:"disable_ssl"`
}

type AzureStorageAccountConfig struct {
	Name      string `mapstructure:"name"      validate:"required"`
	Key       string `mapstructure:"key"       validate:"required"`
	BlobURL   string `mapstructure:"blob_url"  validate:"required"`
	Container string `mapstructure:"container" validate:"required"`
	QueueURL  string `mapstructure:"queue_url"`
	Queue     string `mapstructure:"queue"`
}

type StorageConfig struct {
	S3      *S3Config                  `mapstructure:"s3"      validate:"required_if=Backend s3"`
	Azure   *AzureStorageAccountConfig `mapstructure:"azure"   validate:"required_if=Backend azure"`
	Backend string                     `mapstructure:"backend" validate:"required,oneof=s3 azure"`
}

type RateLimitConfig struct {
	RedisHost string `mapstructure:"redis_host"`
	PerMinute int64  `mapstructure:"per_minute"`
	FailOpen  bool   `mapstructure:"fail_open"`
}

type NotificationsConfig struct {
	// Requires storage.azure.queue_url and storage.azure.queue
	Enabled bool `mapstructure:"enabled"`
}

type ServerConfig struct {
	Storage       *StorageConfig       `mapstructure:"storage"        validate:"required"`
	RateLimit     *RateLimitConfig     `mapstructure:"ratelimit"`
	Notifications *NotificationsConfig `mapstructure:"notifications"`
	ListenAddress string               `mapstructure:"listen_address" validate:"required"`
	AllowOrigins  []string             `mapstructure:"allow_origins"`
}

type SlogConfig struct {
	Level int `mapstructure:"level"`
}

type LoggingConfig struct {
	App     SlogConfig `mapstructure:"app"`
	UseOTLP bool       `mapstructure:"use_otlp"`
}

// See dataform.example.yaml for an example config
type Config struct {
	Form                 *FormConfig    `mapstructure:"form"                   validate:"required"`
	Server               *ServerConfig  `mapstructure:"server"                 validate:"-"`
	Logging              *LoggingConfig `mapstructure:"logging"                validate:"required"`
	GracefulShutdownSecs int64          `mapstructure:"graceful_shutdown_secs"`
}

const (
	AppLogLevel            string = "logging.app.level"
	EnvPrefix              string = "dataform"
	UseOTLP                string = "logging.use_otlp"
	GracefulShutdownSecs   string = "graceful_shutdown_secs"
	FormHost               string = "form.host"
	DevelopmentAPIURL      string = "form.environments.development.api_url"
	DevelopmentTimeout     string = "form.environments.development.timeout"
	ProductionAPIURL       string = "form.environments.production.api_url"
	ProductionTimeout      string = "form.environments.production.timeout"
	ListenAddress          string = "server.listen_address"
	AllowOrigins           string = "server.allow_origins"
	StorageBackend         string = "server.storage.backend"
	S3Endpoint             string = "server.storage.s3.endpoint"
	S3AccessKeyID          string = "server.storage.s3.access_key_id"
	S3SecretAccessKey      string = "server.storage.s3.secret_access_key" // #nosec
	S3BucketName           string = "server.storage.s3.bucket_name"
	S3DisableSSL           string = "server.storage.s3.disable_ssl"
	AzureAccountName       string = "server.storage.azure.name"
	AzureAccountKey        string = "server.storage.azure.key"
	AzureBlobURL           string = "server.storage.azure.blob_url"
	AzureContainer         string = "server.storage.azure.container"
	AzureQueueURL          string = "server.storage.azure.queue_url"
	AzureQueue             string = "server.storage.azure.queue"
	RedisHost              string = "server.ratelimit.redis_host"
	PerMinute              string = "server.ratelimit.per_minute"
	RateLimitFailOpen      string = "server.ratelimit.fail_open"
	NotificationsEnabled   string = "server.notifications.enabled"
	defaultConfigName      string = "dataform"
	defaultSystemConfigDir string = "/etc/dataform/"
)

var ErrNoServerConfig = errors.New("server section missing from config")

var configReady = false
var config Config

// GetConfig loads the config from the default search paths once and caches it
func GetConfig() (*Config, error) {
	if configReady {
		logger.Logger.Debug("returning already-loaded config")
		return &config, nil
	}

	loaded, err := Load("")
	if err != nil {
		return nil, err
	}

	config = *loaded
	configReady = true
	return &config, nil
}

// Load reads `configFile` (or dataform.yaml from the search paths when empty),
// overlays DATAFORM_* env vars and validates the result.
func Load(configFile string) (*Config, error) {
	logger.Logger.Info("loading config", "file", configFile)

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(defaultSystemConfigDir)
		v.AddConfigPath(".")
	}

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// workaround for https://github.com/spf13/viper/issues/761
	// bind env vars explicitly so they unmarshal into the nested struct
	for _, key := range []string{
		S3Endpoint,
		S3AccessKeyID,
		S3SecretAccessKey,
		S3BucketName,
		S3DisableSSL,
		AzureAccountName,
		AzureAccountKey,
		AzureBlobURL,
		AzureContainer,
		AzureQueueURL,
		AzureQueue,
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	defaults := DefaultEnvironments()

	v.SetDefault(FormHost, "")
	v.SetDefault(DevelopmentAPIURL, defaults.Development.APIURL)
	v.SetDefault(DevelopmentTimeout, defaults.Development.Timeout)
	v.SetDefault(ProductionAPIURL, defaults.Production.APIURL)
	v.SetDefault(ProductionTimeout, defaults.Production.Timeout)

	v.SetDefault(ListenAddress, "[::]:1323")
	v.SetDefault(AllowOrigins, []string{"*"})
	v.SetDefault(StorageBackend, "s3")

	v.SetDefault(RedisHost, "localhost")
	v.SetDefault(PerMinute, 0)
	v.SetDefault(RateLimitFailOpen, true)
	v.SetDefault(NotificationsEnabled, false)

	v.SetDefault(AppLogLevel, int(slog.LevelInfo))
	v.SetDefault(UseOTLP, false)
	v.SetDefault(GracefulShutdownSecs, 30)

	err := v.ReadInConfig()
	if err != nil {
		// ignore config file not found to allow pure env config
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	valid := validator.Create()
	err = valid.Validate(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateServer checks the sections only the data API server needs
func (c *Config) ValidateServer() error {
	if c.Server == nil {
		return ErrNoServerConfig
	}

	valid := validator.Create()
	return valid.Validate(c.Server)
}

// Environments builds the lookup table from the form section
func (c *Config) Environments() Environments {
	return Environments{
		Development: Environment{
			Name:    Development,
			APIURL:  c.Form.Environments.Development.APIURL,
			Timeout: c.Form.Environments.Development.Timeout,
		},
		Production: Environment{
			Name:    Production,
			APIURL:  c.Form.Environments.Production.APIURL,
			Timeout: c.Form.Environments.Production.Timeout,
		},
	}
}
