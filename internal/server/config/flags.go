package config

import (
	"flag"
	"os"
	"time"

	"github.com/Xcceleran-do/mindplex-api/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-s string   access-token HMAC secret key
//	-t int      access token lifetime, minutes
//	-i int      refresh idle window, days
//	-f int      refresh family window, days
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-i", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenTTL := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token lifetime (in minutes)")
	refreshIdleWindow := fs.Int("i", int(config.RefreshIdleWindow.Hours()/24), "refresh idle window (in days)")
	refreshFamilyWindow := fs.Int("f", int(config.RefreshFamilyWindow.Hours()/24), "refresh family window (in days)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*accessTokenTTL) * time.Minute
	config.RefreshIdleWindow = time.Duration(*refreshIdleWindow) * 24 * time.Hour
	config.RefreshFamilyWindow = time.Duration(*refreshFamilyWindow) * 24 * time.Hour
}
