package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept both "15m" strings and integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                    string          `json:"http_addr"`
	GRPCAddr                    string          `json:"grpc_addr"`
	AuthorityAddr               string          `json:"authority_addr"`
	DatabaseDSN                 string          `json:"database_dsn"`
	RedisAddr                   string          `json:"redis_addr"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	VerifyTimeout               *timex.Duration `json:"verify_timeout"`
	SecureCookies               *bool           `json:"secure_cookies"`
	SendBufferSize              int             `json:"send_buffer_size"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file keep their current values. An unreadable file or invalid
// JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.AuthorityAddr, c.AuthorityAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.SecretKey, c.SecretKey)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.VerifyTimeout != nil {
		config.VerifyTimeout = c.VerifyTimeout.Duration
	}
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	if c.SendBufferSize > 0 {
		config.SendBufferSize = c.SendBufferSize
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
