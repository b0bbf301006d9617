package config

import (
	"os"
	"strings"
)

// parseEnv applies the deployment environment. PORT accepts either a bare
// port ("8080") or a full address.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		if strings.Contains(v, ":") {
			config.HTTPAddr = v
		} else {
			config.HTTPAddr = ":" + v
		}
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("SESSION_KEY"); ok && v != "" {
		config.SessionKey = v
	}
}
