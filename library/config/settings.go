package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

const (
	DefaultPort              = 3000
	DefaultUpstreamTimeout   = 30 * time.Second
	DefaultCredentialsFile   = "auth/credentials.json"
	DefaultDictionaryBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en_US"
	DefaultUSAJobsBaseURL    = "https://data.usajobs.gov/api/search"
	DefaultUSAJobsHost       = "data.usajobs.gov"

	EnvPort             = "PORT"
	EnvUserAgent        = "USER_AGENT"
	EnvAuthorizationKey = "AUTHORIZATION_KEY"

	credentialUserAgentKey        = "User-Agent"
	credentialAuthorizationKeyKey = "Authorization-Key"
)

// Getter retrieves a raw configuration value by dotted key path.
type Getter func(key string) any

// Settings is the resolved runtime configuration.
type Settings struct {
	// Listen is the address the http server binds to, like ":3000".
	Listen   string
	Port     int
	Upstream UpstreamSettings
	Web      WebSettings
}

// UpstreamSettings configures the outbound dictionary and job-search calls.
type UpstreamSettings struct {
	// Timeout bounds one upstream round trip, 0 disables it.
	Timeout           time.Duration
	CredentialsFile   string
	UserAgent         string
	AuthorizationKey  string
	DictionaryBaseURL string
	USAJobsBaseURL    string
	USAJobsHost       string
}

// WebSettings configures the inbound http surface.
type WebSettings struct {
	// IndexFile overrides the embedded landing page when set.
	IndexFile string
}

// LoadSettings resolves Settings from the shared configuration and the process environment.
func LoadSettings() (Settings, error) {
	return LoadSettingsWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	}, os.Getenv)
}

// LoadSettingsWithGetter resolves Settings from a config getter and an environment lookup.
//
// Precedence is environment, then configuration, then the credentials file
// (for the USAJOBS credentials only), then defaults.
func LoadSettingsWithGetter(get Getter, getenv func(string) string) (Settings, error) {
	if get == nil {
		return Settings{}, errors.New("config getter is nil")
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	settings := Settings{
		Port: intFromConfig(get, "settings.port", DefaultPort),
		Upstream: UpstreamSettings{
			Timeout:           time.Duration(intFromConfig(get, "settings.upstream.timeout_ms", int(DefaultUpstreamTimeout/time.Millisecond))) * time.Millisecond,
			CredentialsFile:   stringFromConfig(get, "settings.upstream.credentials_file", DefaultCredentialsFile),
			UserAgent:         stringFromConfig(get, "settings.upstream.user_agent", ""),
			AuthorizationKey:  stringFromConfig(get, "settings.upstream.authorization_key", ""),
			DictionaryBaseURL: stringFromConfig(get, "settings.upstream.dictionary.base_url", DefaultDictionaryBaseURL),
			USAJobsBaseURL:    stringFromConfig(get, "settings.upstream.usajobs.base_url", DefaultUSAJobsBaseURL),
			USAJobsHost:       stringFromConfig(get, "settings.upstream.usajobs.host", DefaultUSAJobsHost),
		},
		Web: WebSettings{
			IndexFile: stringFromConfig(get, "settings.web.index_file", ""),
		},
	}

	if raw := strings.TrimSpace(getenv(EnvPort)); raw != "" {
		var port int
		if _, err := fmt.Sscanf(raw, "%d", &port); err != nil || port <= 0 || port > 65535 {
			return Settings{}, errors.Errorf("invalid %s %q", EnvPort, raw)
		}
		settings.Port = port
	}
	if settings.Port <= 0 || settings.Port > 65535 {
		settings.Port = DefaultPort
	}

	settings.Listen = stringFromConfig(get, "listen", "")
	if settings.Listen == "" {
		settings.Listen = fmt.Sprintf(":%d", settings.Port)
	}

	if settings.Upstream.Timeout < 0 {
		settings.Upstream.Timeout = 0
	}

	if v := strings.TrimSpace(getenv(EnvUserAgent)); v != "" {
		settings.Upstream.UserAgent = v
	}
	if v := strings.TrimSpace(getenv(EnvAuthorizationKey)); v != "" {
		settings.Upstream.AuthorizationKey = v
	}

	if settings.Upstream.UserAgent == "" || settings.Upstream.AuthorizationKey == "" {
		credPath := resolveRelative(get, settings.Upstream.CredentialsFile)
		creds, err := loadCredentials(credPath)
		if err != nil {
			return Settings{}, errors.Wrap(err, "load upstream credentials")
		}
		if settings.Upstream.UserAgent == "" {
			settings.Upstream.UserAgent = creds[credentialUserAgentKey]
		}
		if settings.Upstream.AuthorizationKey == "" {
			settings.Upstream.AuthorizationKey = creds[credentialAuthorizationKeyKey]
		}
	}

	return settings, nil
}

// loadCredentials reads the credentials JSON document, a missing file yields no credentials.
func loadCredentials(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "read %q", path)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse %q", path)
	}

	creds := make(map[string]string, len(doc))
	for key, value := range doc {
		if text, ok := value.(string); ok {
			creds[key] = strings.TrimSpace(text)
		}
	}
	return creds, nil
}

// resolveRelative anchors a relative path on the directory of the loaded config file.
func resolveRelative(get Getter, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if dir := stringFromConfig(get, "cfg_dir", ""); dir != "" {
		return filepath.Join(dir, path)
	}
	return path
}

// intFromConfig reads an int configuration value with a default fallback.
func intFromConfig(get Getter, key string, def int) int {
	switch v := get(key).(type) {
	case nil:
		return def
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return def
		}
		var parsed int
		if _, err := fmt.Sscanf(trimmed, "%d", &parsed); err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

// stringFromConfig reads a trimmed string configuration value with a default fallback.
func stringFromConfig(get Getter, key string, def string) string {
	v, ok := get(key).(string)
	if !ok {
		return def
	}
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return def
}
