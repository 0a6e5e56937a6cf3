package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/storefront/internal/flagx"
)

// parseFlags applies the short command-line flags:
//
//	-a string   HTTP bind address (e.g. ":8000")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-r string   Redis address
//	-m string   MongoDB URI
//	-l int      requests allowed per rate window
//	-w int      rate window, seconds
//	-t int      cache TTL, seconds
//	-e int      deferred event delay, seconds
//	-n int      worker concurrency
//	-v string   log level
//
// os.Args is filtered first so that -c/-config and unknown flags are ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-r", "-m", "-l", "-w", "-t", "-e", "-n", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "mongodb URI")
	fs.IntVar(&config.RateLimit, "l", config.RateLimit, "requests per rate window")

	rateWindow := fs.Int("w", int(config.RateWindow.Seconds()), "rate window (in seconds)")
	cacheTTL := fs.Int("t", int(config.CacheTTL.Seconds()), "cache TTL (in seconds)")
	eventDelay := fs.Int("e", int(config.EventDelay.Seconds()), "deferred event delay (in seconds)")

	fs.IntVar(&config.WorkerConcurrency, "n", config.WorkerConcurrency, "worker concurrency")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only explicit flags overwrite durations; whole seconds would truncate
	// values coming from the file or the environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			config.RateWindow = time.Duration(*rateWindow) * time.Second
		case "t":
			config.CacheTTL = time.Duration(*cacheTTL) * time.Second
		case "e":
			config.EventDelay = time.Duration(*eventDelay) * time.Second
		}
	})
}
