package amino

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL    = "https://service.aminoapps.com/api/v1"
	DefaultSocketURL = "wss://ws1.narvii.com"
	DefaultLanguage  = "en-US"
	DefaultUserAgent = "Apple iPhone13 iOS v16.1.2 Main/3.13.1"
)

// Config holds client parameters. Empty strings and non-positive numbers
// fall back to DefaultConfig; booleans and RebootInterval are taken as is.
type Config struct {
	DeviceID  string `yaml:"device_id"`  // normalised on use; derived when empty
	APIURL    string `yaml:"api_url"`    // REST base, without trailing slash
	SocketURL string `yaml:"socket_url"` // realtime endpoint
	Language  string `yaml:"language"`   // e.g. "en-US"
	UserAgent string `yaml:"user_agent"`

	// Bot mode: launch the socket on login and route prefixed text
	// messages to registered commands.
	Bot        bool   `yaml:"bot"`
	Prefix     string `yaml:"prefix"`
	StringOnly bool   `yaml:"string_only"`

	// Trace logs socket transitions, sends and dispatched events in colour.
	Trace bool `yaml:"trace"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	Socket         SocketConfig  `yaml:"socket"`

	Logger     *slog.Logger `yaml:"-"`
	HTTPClient *http.Client `yaml:"-"`
	Dialer     Dialer       `yaml:"-"`
}

// SocketConfig tunes the realtime connection.
type SocketConfig struct {
	PingInterval     time.Duration `yaml:"ping_interval"`
	RebootInterval   time.Duration `yaml:"reboot_interval"` // 0 disables periodic reconnects
	ConnectAttempts  int           `yaml:"connect_attempts"`
	DNSBackoff       time.Duration `yaml:"dns_backoff"`
	ConnectBackoff   time.Duration `yaml:"connect_backoff"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"` // GetUsersActions wait
	DedupSize        int           `yaml:"dedup_size"`
	DedupTTL         time.Duration `yaml:"dedup_ttl"`
	PlaylistSettle   time.Duration `yaml:"playlist_settle"` // PlayVideo wait before marking an item done
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		SocketURL:      DefaultSocketURL,
		Language:       DefaultLanguage,
		UserAgent:      DefaultUserAgent,
		Prefix:         "!",
		StringOnly:     true,
		RequestTimeout: 20 * time.Second,
		Socket:         DefaultSocketConfig(),
	}
}

// DefaultSocketConfig returns the production socket defaults.
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		PingInterval:     30 * time.Second,
		RebootInterval:   300 * time.Second,
		ConnectAttempts:  3,
		DNSBackoff:       5 * time.Second,
		ConnectBackoff:   time.Second,
		HandshakeTimeout: 10 * time.Second,
		RequestTimeout:   10 * time.Second,
		DedupSize:        1000,
		DedupTTL:         5 * time.Minute,
		PlaylistSettle:   2 * time.Second,
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	if c.SocketURL == "" {
		c.SocketURL = d.SocketURL
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Prefix == "" {
		c.Prefix = d.Prefix
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	c.Socket = c.Socket.withDefaults()
	return c
}

func (s SocketConfig) withDefaults() SocketConfig {
	d := DefaultSocketConfig()
	if s.PingInterval <= 0 {
		s.PingInterval = d.PingInterval
	}
	if s.RebootInterval < 0 {
		s.RebootInterval = 0
	}
	if s.ConnectAttempts <= 0 {
		s.ConnectAttempts = d.ConnectAttempts
	}
	if s.DNSBackoff <= 0 {
		s.DNSBackoff = d.DNSBackoff
	}
	if s.ConnectBackoff <= 0 {
		s.ConnectBackoff = d.ConnectBackoff
	}
	if s.HandshakeTimeout <= 0 {
		s.HandshakeTimeout = d.HandshakeTimeout
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = d.RequestTimeout
	}
	if s.DedupSize <= 0 {
		s.DedupSize = d.DedupSize
	}
	if s.DedupTTL <= 0 {
		s.DedupTTL = d.DedupTTL
	}
	if s.PlaylistSettle <= 0 {
		s.PlaylistSettle = d.PlaylistSettle
	}
	return s
}
