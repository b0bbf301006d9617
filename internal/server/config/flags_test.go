package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "memory://", "-n", "nest", "-s", "secret",
				"-t", "60", "-l", "debug", "-i", "s3", "-f", "/var/uploads", "-x",
				"-r", "0", "-k", "skey",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			},
			expected: &Config{
				HTTPAddr:              "127.0.0.1:9090",
				DatabaseDSN:           "memory://",
				DatabaseName:          "nest",
				SecretKey:             "secret",
				TokenValidityDuration: time.Hour,
				LogLevel:              "debug",
				ImageStore:            "s3",
				UploadDir:             "/var/uploads",
				UseTransactions:       true,
				ReconcileInterval:     0,
				SessionKey:            "skey",
				S3RootUser:            "user",
				S3RootPassword:        "password",
				S3Bucket:              "bucket",
				S3Region:              "us-west-1",
				S3BaseEndpoint:        "http://endpoint",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"cmd", "-c", "cfg.json", "-a", ":1", "-t", "5", "-r", "1", "-zzz"},
			expected: &Config{
				HTTPAddr:              ":1",
				TokenValidityDuration: 5 * time.Minute,
				ReconcileInterval:     time.Minute,
			},
		},
		{
			name:        "bad int",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
