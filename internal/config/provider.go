package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Provider abstracts ambient lookups (process environment and loosely typed
// configuration properties) so callers can be tested with deterministic values.
type Provider interface {
	// Getenv returns the value of an environment variable, or "" if unset.
	Getenv(key string) string
	// Property returns a configuration property such as "http.proxyHost", or "" if unset.
	Property(key string) string
}

// ViperProvider reads properties from a viper instance and environment
// variables from the process environment.
type ViperProvider struct {
	v         *viper.Viper
	lookupEnv func(string) (string, bool)
}

// NewProvider wraps a viper instance. A nil viper falls back to the global one.
func NewProvider(v *viper.Viper) *ViperProvider {
	if v == nil {
		v = viper.GetViper()
	}
	return &ViperProvider{v: v, lookupEnv: os.LookupEnv}
}

// Getenv implements Provider.
func (p *ViperProvider) Getenv(key string) string {
	val, ok := p.lookupEnv(key)
	if !ok {
		return ""
	}
	return val
}

// Property implements Provider. Keys are matched case-insensitively, the same
// way viper stores them.
func (p *ViperProvider) Property(key string) string {
	return p.v.GetString(strings.ToLower(key))
}
