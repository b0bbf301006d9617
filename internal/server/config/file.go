package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/scribblenest/internal/flagx"
	"github.com/dmitrijs2005/scribblenest/internal/timex"
	"gopkg.in/yaml.v2"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// both "90s"-style strings and integer nanoseconds. Zero values mean
// "keep what is already set".
type FileConfig struct {
	HTTPAddr              string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN           string         `json:"database_dsn" yaml:"database_dsn"`
	DatabaseName          string         `json:"database_name" yaml:"database_name"`
	SecretKey             string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	BcryptCost            int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	StoreTimeout          timex.Duration `json:"store_timeout" yaml:"store_timeout"`
	ConnectAttempts       int            `json:"connect_attempts" yaml:"connect_attempts"`
	ConnectBackoff        timex.Duration `json:"connect_backoff" yaml:"connect_backoff"`
	ReconcileInterval     timex.Duration `json:"reconcile_interval" yaml:"reconcile_interval"`
	UseTransactions       *bool          `json:"use_transactions" yaml:"use_transactions"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
	ImageStore            string         `json:"image_store" yaml:"image_store"`
	UploadDir             string         `json:"upload_dir" yaml:"upload_dir"`
	MaxUploadSize         int64          `json:"max_upload_size" yaml:"max_upload_size"`
	S3RootUser            string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region              string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	SessionKey            string         `json:"session_key" yaml:"session_key"`
}

// parseFile overlays values from the file named by -c/-config. The format
// follows the extension: .yaml/.yml is YAML, anything else JSON. A missing
// or malformed file panics; LoadConfig runs before anything is started.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func decodeFile(path string, data []byte) (*FileConfig, error) {
	fc := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, fc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, fc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	return fc, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.DatabaseName, fc.DatabaseName)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.ImageStore, fc.ImageStore)
	setString(&c.UploadDir, fc.UploadDir)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.SessionKey, fc.SessionKey)

	if fc.TokenValidityDuration.Duration > 0 {
		c.TokenValidityDuration = fc.TokenValidityDuration.Duration
	}
	if fc.StoreTimeout.Duration > 0 {
		c.StoreTimeout = fc.StoreTimeout.Duration
	}
	if fc.ConnectBackoff.Duration > 0 {
		c.ConnectBackoff = fc.ConnectBackoff.Duration
	}
	if fc.ReconcileInterval.Duration > 0 {
		c.ReconcileInterval = fc.ReconcileInterval.Duration
	}
	if fc.BcryptCost > 0 {
		c.BcryptCost = fc.BcryptCost
	}
	if fc.ConnectAttempts > 0 {
		c.ConnectAttempts = fc.ConnectAttempts
	}
	if fc.MaxUploadSize > 0 {
		c.MaxUploadSize = fc.MaxUploadSize
	}
	if fc.UseTransactions != nil {
		c.UseTransactions = *fc.UseTransactions
	}
}
