// Package config handles configuration for the server and the admin CLI:
// defaults, an optional JSON or YAML file, command-line flags and finally
// the environment.
package config

import "time"

// Config holds runtime settings for the scribblenest server.
//
// Fields:
//   - HTTPAddr: bind address for the web server.
//   - DatabaseDSN: store DSN; the scheme selects the backend
//     (mongodb://, mongodb+srv://, postgres://, memory://).
//   - DatabaseName: Mongo database name (ignored by other backends).
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - TokenValidityDuration: session token lifetime.
//   - StoreTimeout: upper bound for a single store operation.
//   - ConnectAttempts / ConnectBackoff: startup connection retry policy.
//   - ReconcileInterval: period of the dangling-reference sweep; 0 disables it.
//   - UseTransactions: use Mongo session transactions (needs a replica set).
//   - ImageStore: "local" or "s3".
//   - S3*: object storage settings for the s3 image store.
//   - SessionKey: signing key for the flash-message cookie.
type Config struct {
	HTTPAddr              string
	DatabaseDSN           string
	DatabaseName          string
	SecretKey             string
	TokenValidityDuration time.Duration
	BcryptCost            int
	StoreTimeout          time.Duration
	ConnectAttempts       int
	ConnectBackoff        time.Duration
	ReconcileInterval     time.Duration
	UseTransactions       bool
	LogLevel              string
	ImageStore            string
	UploadDir             string
	MaxUploadSize         int64
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	SessionKey            string
}

const (
	ImageStoreLocal = "local"
	ImageStoreS3    = "s3"
)

// LoadDefaults populates Config with development defaults.
// NOTE: the secrets below are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.DatabaseDSN = "mongodb://127.0.0.1:27017"
	c.DatabaseName = "scribblenest"
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.BcryptCost = 10
	c.StoreTimeout = 5 * time.Second
	c.ConnectAttempts = 5
	c.ConnectBackoff = 500 * time.Millisecond
	c.ReconcileInterval = 10 * time.Minute
	c.UseTransactions = false
	c.LogLevel = "info"
	c.ImageStore = ImageStoreLocal
	c.UploadDir = "uploads"
	c.MaxUploadSize = 5 << 20
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "scribblenest"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.SessionKey = "sessionKey"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, command-line flags and the environment.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}
