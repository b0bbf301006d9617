package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile(t *testing.T) {
	jsonPath := writeTemp(t, "cfg.json", `{
		"http_addr": "www.example:9000",
		"database_dsn": "postgres://db/app",
		"secret_key": "my_secret_key",
		"token_validity_duration": "2h",
		"store_timeout": 3000000000,
		"use_transactions": true,
		"image_store": "s3",
		"s3_bucket": "pics"
	}`)

	yamlPath := writeTemp(t, "cfg.yaml", `
http_addr: ":7000"
database_dsn: "mongodb://mongo:27017"
database_name: nest
connect_attempts: 9
connect_backoff: 250ms
reconcile_interval: 1m
max_upload_size: 1024
`)

	tests := []struct {
		name string
		args []string
		want func(c *Config)
	}{
		{
			name: "json",
			args: []string{"bin", "-config", jsonPath},
			want: func(c *Config) {
				c.HTTPAddr = "www.example:9000"
				c.DatabaseDSN = "postgres://db/app"
				c.SecretKey = "my_secret_key"
				c.TokenValidityDuration = 2 * time.Hour
				c.StoreTimeout = 3 * time.Second
				c.UseTransactions = true
				c.ImageStore = "s3"
				c.S3Bucket = "pics"
			},
		},
		{
			name: "yaml",
			args: []string{"bin", "-c", yamlPath},
			want: func(c *Config) {
				c.HTTPAddr = ":7000"
				c.DatabaseDSN = "mongodb://mongo:27017"
				c.DatabaseName = "nest"
				c.ConnectAttempts = 9
				c.ConnectBackoff = 250 * time.Millisecond
				c.ReconcileInterval = time.Minute
				c.MaxUploadSize = 1024
			},
		},
		{
			name: "no file keeps defaults",
			args: []string{"bin"},
			want: func(*Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			got := defaults()
			parseFile(got)

			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}

func TestParseFile_Invalid(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	bad := writeTemp(t, "bad.json", `{ this is not valid json`)
	os.Args = []string{"bin", "-config", bad}
	require.Panics(t, func() { parseFile(defaults()) })

	unknown := writeTemp(t, "bad.yml", "no_such_field: 1\n")
	os.Args = []string{"bin", "-config", unknown}
	require.Panics(t, func() { parseFile(defaults()) })

	os.Args = []string{"bin", "-config", filepath.Join(t.TempDir(), "missing.json")}
	require.Panics(t, func() { parseFile(defaults()) })
}
