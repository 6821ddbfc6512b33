package botdriver

import (
	"fmt"
	"io"

	"github.com/blang/semver"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"github.com/tebeka/selenium/log"
)

// Browser names accepted by the driver services.
const (
	Chrome  = "chrome"
	Firefox = "firefox"
)

// SessionOption configures a Session before it is started.
type SessionOption func(*settings) error

type settings struct {
	browser        string
	binary         string
	proxy          *selenium.Proxy
	relayAddr      string
	logLevels      log.Capabilities
	frameBuffer    bool
	minVersion     *semver.Version
	metrics        *Metrics
	serviceOptions []selenium.ServiceOption
}

func newSettings(opts []SessionOption) (*settings, error) {
	s := &settings{browser: Chrome}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// UseFirefox drives Firefox through geckodriver instead of Chrome.
func UseFirefox() SessionOption {
	return func(s *settings) error {
		s.browser = Firefox
		return nil
	}
}

// UseBrowser selects the browser by name, one of Chrome or Firefox.
func UseBrowser(name string) SessionOption {
	return func(s *settings) error {
		switch name {
		case "", Chrome:
			s.browser = Chrome
		case Firefox:
			s.browser = Firefox
		default:
			return fmt.Errorf("botdriver: unsupported browser %q", name)
		}
		return nil
	}
}

// BrowserBinary sets the path to the browser executable the driver should
// launch. If unset the driver picks its default installation.
func BrowserBinary(path string) SessionOption {
	return func(s *settings) error {
		s.binary = path
		return nil
	}
}

// WithProxy routes the browser's traffic through p.
func WithProxy(p selenium.Proxy) SessionOption {
	return func(s *settings) error {
		if s.relayAddr != "" {
			return fmt.Errorf("botdriver: proxy conflicts with SOCKS relay on %s", s.relayAddr)
		}
		s.proxy = &p
		return nil
	}
}

// SOCKSRelay starts an in-process SOCKS5 relay listening on addr for the
// lifetime of the session and routes the browser through it. Use port 0 to
// pick a free port.
func SOCKSRelay(addr string) SessionOption {
	return func(s *settings) error {
		if s.proxy != nil {
			return fmt.Errorf("botdriver: SOCKS relay conflicts with proxy of type %q", s.proxy.Type)
		}
		if addr == "" {
			return fmt.Errorf("botdriver: empty SOCKS relay address")
		}
		s.relayAddr = addr
		return nil
	}
}

// DriverLogLevel sets the logging level of a driver-side log component.
func DriverLogLevel(typ log.Type, level log.Level) SessionOption {
	return func(s *settings) error {
		if s.logLevels == nil {
			s.logLevels = make(log.Capabilities)
		}
		s.logLevels[typ] = level
		return nil
	}
}

// DriverOutput sends the local driver process's output to w.
func DriverOutput(w io.Writer) SessionOption {
	return func(s *settings) error {
		s.serviceOptions = append(s.serviceOptions, selenium.Output(w))
		return nil
	}
}

// StartFrameBuffer runs a local driver, and the browser it launches, inside
// an X virtual frame buffer. It has no effect on remote sessions.
func StartFrameBuffer() SessionOption {
	return func(s *settings) error {
		if s.frameBuffer {
			return nil
		}
		s.frameBuffer = true
		s.serviceOptions = append(s.serviceOptions, selenium.StartFrameBuffer())
		return nil
	}
}

// MinimumBrowserVersion makes construction fail when the browser reports a
// version older than v.
func MinimumBrowserVersion(v semver.Version) SessionOption {
	return func(s *settings) error {
		s.minVersion = &v
		return nil
	}
}

// WithMetrics records every session operation in m.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *settings) error {
		s.metrics = m
		return nil
	}
}

// capabilities builds the WebDriver capabilities for a session: normal page
// load strategy, the window size, and then args verbatim and in order.
func (s *settings) capabilities(width, height int, args []string) selenium.Capabilities {
	caps := selenium.Capabilities{
		"browserName":      s.browser,
		"pageLoadStrategy": "normal",
	}
	switch s.browser {
	case Firefox:
		browserArgs := []string{fmt.Sprintf("--width=%d", width), fmt.Sprintf("--height=%d", height)}
		caps.AddFirefox(firefox.Capabilities{
			Binary: s.binary,
			Args:   append(browserArgs, args...),
		})
	default:
		browserArgs := []string{fmt.Sprintf("--window-size=%d,%d", width, height)}
		caps.AddChrome(chrome.Capabilities{
			Path: s.binary,
			Args: append(browserArgs, args...),
			W3C:  true,
		})
	}
	if s.proxy != nil {
		caps.AddProxy(*s.proxy)
	}
	if len(s.logLevels) > 0 {
		caps.AddLogging(s.logLevels)
	}
	return caps
}
