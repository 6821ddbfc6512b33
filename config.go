package botdriver

import (
	"errors"
	"fmt"
	"os"

	"github.com/blang/semver"
	"gopkg.in/yaml.v3"
)

// Defaults applied to a Config by ParseConfig.
const (
	DefaultWidth          = 1920
	DefaultHeight         = 1080
	DefaultTimeoutSeconds = 30
)

// Config describes how to open a Session. It is usually read from YAML.
type Config struct {
	// Browser is Chrome or Firefox. Empty means Chrome.
	Browser string `yaml:"browser"`
	// DriverPath is the chromedriver or geckodriver binary for a local
	// session.
	DriverPath string `yaml:"driver_path,omitempty"`
	// Remote is the endpoint of a remote session: an absolute URL or a host
	// name. Exactly one of DriverPath and Remote must be set.
	Remote string `yaml:"remote,omitempty"`
	// BrowserBinary overrides the browser executable the driver launches.
	BrowserBinary string   `yaml:"browser_binary,omitempty"`
	Width         int      `yaml:"width"`
	Height        int      `yaml:"height"`
	Arguments     []string `yaml:"arguments,omitempty"`
	// TimeoutSeconds is used for page loads, implicit waits and scripts.
	// Unset means DefaultTimeoutSeconds; an explicit 0 disables the waits.
	TimeoutSeconds *float64 `yaml:"timeout_seconds"`
	// SOCKSRelay, if set, is the listen address of an in-process SOCKS5
	// relay the browser is routed through.
	SOCKSRelay string `yaml:"socks_relay,omitempty"`
	// FrameBuffer starts a local driver under Xvfb.
	FrameBuffer bool `yaml:"frame_buffer,omitempty"`
	// MinBrowserVersion rejects browsers older than this version.
	MinBrowserVersion string `yaml:"min_browser_version,omitempty"`
	Debug             bool   `yaml:"debug,omitempty"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("botdriver: reading config: %w", err)
	}
	c, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseConfig decodes YAML configuration, fills in defaults and validates the
// result.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("botdriver: parsing config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Browser == "" {
		c.Browser = Chrome
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.TimeoutSeconds == nil {
		t := float64(DefaultTimeoutSeconds)
		c.TimeoutSeconds = &t
	}
}

func (c *Config) timeout() float64 {
	if c.TimeoutSeconds == nil {
		return DefaultTimeoutSeconds
	}
	return *c.TimeoutSeconds
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	switch {
	case c.DriverPath == "" && c.Remote == "":
		return errors.New("botdriver: config needs driver_path or remote")
	case c.DriverPath != "" && c.Remote != "":
		return errors.New("botdriver: config sets both driver_path and remote")
	case c.Browser != Chrome && c.Browser != Firefox:
		return fmt.Errorf("botdriver: unsupported browser %q", c.Browser)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("botdriver: invalid window size %dx%d", c.Width, c.Height)
	case c.timeout() < 0:
		return fmt.Errorf("botdriver: negative timeout %v", c.timeout())
	}
	if c.MinBrowserVersion != "" {
		if _, err := semver.ParseTolerant(c.MinBrowserVersion); err != nil {
			return fmt.Errorf("botdriver: min_browser_version: %w", err)
		}
	}
	return nil
}

// Options translates c into session options. Options in extra are applied
// after them.
func (c *Config) Options(extra ...SessionOption) ([]SessionOption, error) {
	opts := []SessionOption{UseBrowser(c.Browser)}
	if c.BrowserBinary != "" {
		opts = append(opts, BrowserBinary(c.BrowserBinary))
	}
	if c.SOCKSRelay != "" {
		opts = append(opts, SOCKSRelay(c.SOCKSRelay))
	}
	if c.FrameBuffer {
		opts = append(opts, StartFrameBuffer())
	}
	if c.MinBrowserVersion != "" {
		v, err := semver.ParseTolerant(c.MinBrowserVersion)
		if err != nil {
			return nil, fmt.Errorf("botdriver: min_browser_version: %w", err)
		}
		opts = append(opts, MinimumBrowserVersion(v))
	}
	return append(opts, extra...), nil
}

// Open starts the session c describes.
func (c *Config) Open(extra ...SessionOption) (*Session, error) {
	opts, err := c.Options(extra...)
	if err != nil {
		return nil, err
	}
	if c.Debug {
		SetDebug(true)
	}
	timeout := Seconds(c.timeout())
	if c.Remote != "" {
		return NewRemote(c.Remote, c.Width, c.Height, c.Arguments, timeout, opts...)
	}
	return NewLocal(c.DriverPath, c.Width, c.Height, c.Arguments, timeout, opts...)
}
