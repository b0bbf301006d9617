package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/flagx"
)

var allowedFlags = []string{
	"-a", "-d", "-n", "-s", "-t", "-l", "-i", "-f", "-x", "-r", "-k",
	"-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   store DSN
//	-n string   database name
//	-s string   token HMAC secret key
//	-t int      token validity, minutes
//	-l string   log level
//	-i string   image store: local | s3
//	-f string   upload directory for the local image store
//	-x bool     use store transactions
//	-r int      reconcile interval, minutes (0 disables)
//	-k string   flash cookie signing key
//	-u -p -b -g -e   S3 user, password, bucket, region, endpoint
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// components (such as -c) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], allowedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DatabaseName, "n", config.DatabaseName, "database name")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.ImageStore, "i", config.ImageStore, "image store (local|s3)")
	fs.StringVar(&config.UploadDir, "f", config.UploadDir, "upload directory")
	fs.BoolVar(&config.UseTransactions, "x", config.UseTransactions, "use store transactions")
	reconcileInterval := fs.Int("r", int(config.ReconcileInterval.Minutes()), "reconcile interval (in minutes)")
	fs.StringVar(&config.SessionKey, "k", config.SessionKey, "session key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// minute flags only override what they were given; file values like 90s survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		case "r":
			config.ReconcileInterval = time.Duration(*reconcileInterval) * time.Minute
		}
	})
}
