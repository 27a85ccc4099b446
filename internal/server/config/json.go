package config

import (
	"encoding/json"
	"os"

	"github.com/Xcceleran-do/mindplex-api/internal/flagx"
	"github.com/Xcceleran-do/mindplex-api/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON configuration files.
// Interval fields use timex.Duration so both string values such as "15m"
// and integer nanoseconds parse. After unmarshalling, its fields are copied
// into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP    string         `json:"endpoint_addr_http"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	TokenIssuer         string         `json:"token_issuer"`
	TokenAudience       string         `json:"token_audience"`
	AccessTokenTTL      timex.Duration `json:"access_token_ttl"`
	RefreshIdleWindow   timex.Duration `json:"refresh_idle_window"`
	RefreshFamilyWindow timex.Duration `json:"refresh_family_window"`
	ActivationTokenTTL  timex.Duration `json:"activation_token_ttl"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Absent flags mean no file is
// loaded; absent fields keep their current values.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenIssuer != "" {
		config.TokenIssuer = c.TokenIssuer
	}
	if c.TokenAudience != "" {
		config.TokenAudience = c.TokenAudience
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshIdleWindow.Duration != 0 {
		config.RefreshIdleWindow = c.RefreshIdleWindow.Duration
	}
	if c.RefreshFamilyWindow.Duration != 0 {
		config.RefreshFamilyWindow = c.RefreshFamilyWindow.Duration
	}
	if c.ActivationTokenTTL.Duration != 0 {
		config.ActivationTokenTTL = c.ActivationTokenTTL.Duration
	}

	return nil
}
