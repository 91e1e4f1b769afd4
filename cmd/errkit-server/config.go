package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration, read from ERRKIT_* environment
// variables.
type Config struct {
	Port           string
	RedisURL       string
	ProbeURL       string
	LogLevel       string
	LogPretty      bool
	SessionSubject string

	// CallbackPrefixes lists the URL prefixes POST /v1/report may re-check.
	// Empty disables callbacks.
	CallbackPrefixes []string
	CallbackTimeout  time.Duration
}

func loadConfig() Config {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("PROBE_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("SESSION_SUBJECT", "")
	v.SetDefault("CALLBACK_PREFIXES", "")
	v.SetDefault("CALLBACK_TIMEOUT", 5*time.Second)

	v.SetEnvPrefix("ERRKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return Config{
		Port:           v.GetString("PORT"),
		RedisURL:       v.GetString("REDIS_URL"),
		ProbeURL:       v.GetString("PROBE_URL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogPretty:      v.GetBool("LOG_PRETTY"),
		SessionSubject: v.GetString("SESSION_SUBJECT"),

		CallbackPrefixes: splitList(v.GetString("CALLBACK_PREFIXES")),
		CallbackTimeout:  v.GetDuration("CALLBACK_TIMEOUT"),
	}
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
