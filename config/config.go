package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/alekLukanen/errs"
	"gopkg.in/yaml.v3"
)

type ObjectStorageConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	AuthKey      string `yaml:"auth_key"`
	AuthSecret   string `yaml:"auth_secret"`
	UsePathStyle bool   `yaml:"use_path_style"`
	BucketName   string `yaml:"bucket_name"`
	KeyPrefix    string `yaml:"key_prefix"`
}

func (obj ObjectStorageConfig) Enabled() bool {
	return obj.BucketName != ""
}

type RunLedgerConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	KeyPrefix  string `yaml:"key_prefix"`
	MaxEntries int64  `yaml:"max_entries"`
}

func (obj RunLedgerConfig) Enabled() bool {
	return obj.Address != ""
}

// Config is built once at process start and handed to every stage.
// Object storage and the run ledger stay disabled until configured.
type Config struct {
	Paths         Paths               `yaml:"paths"`
	LogLevel      string              `yaml:"log_level"`
	ObjectStorage ObjectStorageConfig `yaml:"object_storage"`
	RunLedger     RunLedgerConfig     `yaml:"run_ledger"`
}

func Default(root string) Config {
	return Config{
		Paths:    DefaultPaths(root),
		LogLevel: "info",
		ObjectStorage: ObjectStorageConfig{
			Region:    "us-east-1",
			KeyPrefix: "healthcare",
		},
		RunLedger: RunLedgerConfig{
			KeyPrefix:  "healthcare",
			MaxEntries: 100,
		},
	}
}

// LoadFile overlays the yaml file at path onto the defaults for root.
func LoadFile(path, root string) (Config, error) {
	cfg := Default(root)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w| path: %s", ErrConfigNotFound, path)
		}
		return Config{}, errs.Wrap(err, fmt.Errorf("failed reading config file %s", path))
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errs.Wrap(err, fmt.Errorf("failed parsing config file %s", path))
	}

	cfg.Paths = cfg.Paths.resolve(root)
	return cfg, nil
}

// ApplyEnv overlays HEALTHCARE_* variables returned by lookup, usually os.LookupEnv.
func (obj *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, target *string) {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	set("HEALTHCARE_RAW_CSV", &obj.Paths.RawCSV)
	set("HEALTHCARE_PROCESSED_DIR", &obj.Paths.ProcessedDir)
	set("HEALTHCARE_MONITORING_DIR", &obj.Paths.MonitoringDir)
	set("HEALTHCARE_ARTIFACTS_DIR", &obj.Paths.ArtifactsDir)
	set("HEALTHCARE_LOG_LEVEL", &obj.LogLevel)

	set("HEALTHCARE_S3_BUCKET", &obj.ObjectStorage.BucketName)
	set("HEALTHCARE_S3_ENDPOINT", &obj.ObjectStorage.Endpoint)
	set("HEALTHCARE_S3_REGION", &obj.ObjectStorage.Region)
	set("HEALTHCARE_S3_KEY", &obj.ObjectStorage.AuthKey)
	set("HEALTHCARE_S3_SECRET", &obj.ObjectStorage.AuthSecret)

	set("HEALTHCARE_REDIS_ADDR", &obj.RunLedger.Address)
	set("HEALTHCARE_REDIS_PASSWORD", &obj.RunLedger.Password)
}

func (obj Config) Validate() error {
	if obj.Paths.RawCSV == "" {
		return fmt.Errorf("%w| raw csv path is empty", ErrInvalidConfig)
	}
	if obj.Paths.ProcessedDir == "" {
		return fmt.Errorf("%w| processed dir is empty", ErrInvalidConfig)
	}
	if obj.Paths.MonitoringDir == "" || obj.Paths.ArtifactsDir == "" {
		return fmt.Errorf("%w| artifact dirs must be set", ErrInvalidConfig)
	}

	if _, err := obj.Level(); err != nil {
		return err
	}

	if obj.ObjectStorage.Enabled() {
		if obj.ObjectStorage.Region == "" {
			return fmt.Errorf("%w| object storage region is empty", ErrInvalidConfig)
		}
		if (obj.ObjectStorage.AuthKey == "") != (obj.ObjectStorage.AuthSecret == "") {
			return fmt.Errorf("%w| object storage key and secret must be set together", ErrInvalidConfig)
		}
	}

	if obj.RunLedger.Enabled() && obj.RunLedger.MaxEntries <= 0 {
		return fmt.Errorf("%w| run ledger max entries must be positive", ErrInvalidConfig)
	}

	return nil
}

func (obj Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(obj.LogLevel))); err != nil {
		return level, fmt.Errorf("%w| log level: %s", ErrInvalidConfig, obj.LogLevel)
	}
	return level, nil
}
