package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        HTTP bind address (e.g., ":5000")
//	-g string        gRPC bind address (e.g., ":50051")
//	-storage string  postgres | mongo | memory
//	-d string        PostgreSQL DSN
//	-m string        MongoDB URI
//	-s string        JWT HMAC secret key
//	-t int           token lifetime, minutes
//	-f string        frontend base URL used in reset links
//	-l string        log level
//
// Args are filtered with flagx.FilterArgs first, so -c/-env and unknown
// flags do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-storage", "-d", "-m", "-s", "-t", "-f", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.Storage, "storage", config.Storage, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongo URI")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenLifetime := fs.Int("t", int(config.TokenLifetime.Minutes()), "token lifetime (in minutes)")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenLifetime = time.Duration(*tokenLifetime) * time.Minute
		}
	})
	return nil
}
