package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gateway HTTP bind address
//	-g string   authority gRPC bind address
//	-A string   authority address dialed by the gateway
//	-d string   PostgreSQL DSN
//	-r string   Redis address (empty = in-memory revocations)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-v int      verification timeout, seconds
//	-b int      per-connection send buffer
//	-secure     set the Secure attribute on the access token cookie
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-g", "-A", "-d", "-r", "-s", "-t", "-v", "-b"},
		"-secure")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "gateway address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "authority gRPC address and port")
	fs.StringVar(&config.AuthorityAddr, "A", config.AuthorityAddr, "authority address dialed by the gateway")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	verifyTimeout := fs.Int("v", int(config.VerifyTimeout.Seconds()), "verify_timeout (in seconds)")

	fs.IntVar(&config.SendBufferSize, "b", config.SendBufferSize, "per-connection send buffer")
	fs.BoolVar(&config.SecureCookies, "secure", config.SecureCookies, "secure cookies")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.VerifyTimeout = time.Duration(*verifyTimeout) * time.Second
}
