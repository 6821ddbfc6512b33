package botdriver

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/selenium"

	"github.com/wanmail/botdriver/internal/socksrelay"
)

// Session is a browser session driven through WebDriver. A Session has a
// single owner: its methods are serialised, and the implicit-wait override
// applied by the optional lookups is restored before the next call starts.
//
// A Session must be released with Close on every exit path, otherwise the
// browser process or the remote session is leaked.
type Session struct {
	mu sync.Mutex

	wd       selenium.WebDriver
	service  driverService
	relay    *socksrelay.Relay
	timeout  time.Duration
	disposed bool
	metrics  *Metrics
}

// driverService is a locally running WebDriver process.
type driverService interface {
	Stop() error
}

// These are variables so tests can stand in for processes and servers.
var (
	startChromeDriver = func(path string, port int, opts ...selenium.ServiceOption) (driverService, error) {
		s, err := selenium.NewChromeDriverService(path, port, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	startGeckoDriver = func(path string, port int, opts ...selenium.ServiceOption) (driverService, error) {
		s, err := selenium.NewGeckoDriverService(path, port, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	newRemote      = selenium.NewRemote
	pickUnusedPort = unusedPort
)

// Seconds converts a possibly fractional number of seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// NewLocal starts the driver binary at driverPath (chromedriver, or
// geckodriver with UseFirefox) on a free local port and opens a session on it.
// The window is sized width x height and args are passed to the browser after
// the window size, in order. timeout applies to page loads, implicit element
// waits and asynchronous scripts.
func NewLocal(driverPath string, width, height int, args []string, timeout time.Duration, opts ...SessionOption) (*Session, error) {
	set, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	relay, err := set.startRelay()
	if err != nil {
		return nil, err
	}
	port, err := pickUnusedPort()
	if err != nil {
		closeRelay(relay)
		return nil, fmt.Errorf("botdriver: picking a driver port: %w", err)
	}

	start, urlPrefix := startChromeDriver, "/wd/hub"
	if set.browser == Firefox {
		start, urlPrefix = startGeckoDriver, ""
	}
	svc, err := start(driverPath, port, set.serviceOptions...)
	if err != nil {
		closeRelay(relay)
		return nil, fmt.Errorf("botdriver: starting driver %q: %w", driverPath, err)
	}
	glog.V(1).Infof("botdriver: driver %q listening on port %d", driverPath, port)

	addr := fmt.Sprintf("http://localhost:%d%s", port, urlPrefix)
	return connect(set, addr, width, height, args, timeout, svc, relay)
}

// NewRemote opens a session on a remote WebDriver server. endpoint is either
// an absolute URL or a bare host name, see ResolveEndpoint. The remaining
// parameters are as for NewLocal.
func NewRemote(endpoint string, width, height int, args []string, timeout time.Duration, opts ...SessionOption) (*Session, error) {
	set, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	relay, err := set.startRelay()
	if err != nil {
		return nil, err
	}
	return connect(set, ResolveEndpoint(endpoint), width, height, args, timeout, nil, relay)
}

func connect(set *settings, addr string, width, height int, args []string, timeout time.Duration, svc driverService, relay *socksrelay.Relay) (*Session, error) {
	wd, err := newRemote(set.capabilities(width, height, args), addr)
	if err != nil {
		stopService(svc)
		closeRelay(relay)
		return nil, fmt.Errorf("botdriver: connecting to %s: %w", addr, err)
	}

	s := &Session{
		wd:      wd,
		service: svc,
		relay:   relay,
		timeout: timeout,
		metrics: set.metrics,
	}
	s.metrics.sessionOpened()

	if err := s.applyTimeouts(); err != nil {
		s.Close()
		return nil, err
	}
	if set.minVersion != nil {
		if err := s.checkVersion(*set.minVersion); err != nil {
			s.Close()
			return nil, err
		}
	}
	glog.V(1).Infof("botdriver: %s session %s opened on %s", set.browser, wd.SessionID(), addr)
	return s, nil
}

func (s *Session) applyTimeouts() error {
	if err := s.wd.SetPageLoadTimeout(s.timeout); err != nil {
		return fmt.Errorf("botdriver: setting page load timeout: %w", err)
	}
	if err := s.wd.SetImplicitWaitTimeout(s.timeout); err != nil {
		return fmt.Errorf("botdriver: setting implicit wait timeout: %w", err)
	}
	if err := s.wd.SetAsyncScriptTimeout(s.timeout); err != nil {
		return fmt.Errorf("botdriver: setting script timeout: %w", err)
	}
	return nil
}

func (s *settings) startRelay() (*socksrelay.Relay, error) {
	if s.relayAddr == "" {
		return nil, nil
	}
	relay, err := socksrelay.Start(s.relayAddr)
	if err != nil {
		return nil, fmt.Errorf("botdriver: starting SOCKS relay: %w", err)
	}
	s.proxy = &selenium.Proxy{
		Type:         selenium.Manual,
		SOCKS:        relay.Addr(),
		SOCKSVersion: 5,
	}
	return relay, nil
}

// Timeout returns the duration applied to page loads, implicit waits and
// scripts.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// ID returns the WebDriver session identifier, or the empty string once the
// session is closed.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ""
	}
	return s.wd.SessionID()
}

// do runs f as operation op while holding the session. It fails fast on a
// closed session.
func (s *Session) do(op string, f func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	start := time.Now()
	err := f()
	s.metrics.observe(op, start, err)
	debugLog("botdriver: %s done in %v, err=%v", op, time.Since(start), err)
	return err
}

// withImplicitWait runs f with the implicit wait set to d and puts the
// configured timeout back when f returns or panics.
func (s *Session) withImplicitWait(d time.Duration, f func() error) (err error) {
	if err := s.wd.SetImplicitWaitTimeout(d); err != nil {
		return fmt.Errorf("botdriver: setting implicit wait to %v: %w", d, err)
	}
	defer func() {
		if rerr := s.wd.SetImplicitWaitTimeout(s.timeout); rerr != nil && err == nil {
			err = fmt.Errorf("botdriver: restoring implicit wait to %v: %w", s.timeout, rerr)
		}
	}()
	return f()
}

// Close ends the browser session, stops the local driver and releases the
// session's resources. Failures along the way are logged and otherwise
// ignored: the caller has no way to act on them. Close may be called more than
// once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil
	}
	s.disposed = true

	id := s.wd.SessionID()
	if err := s.wd.Quit(); err != nil {
		glog.Warningf("botdriver: quitting session %s: %v", id, err)
	}
	stopService(s.service)
	closeRelay(s.relay)
	s.wd, s.service, s.relay = nil, nil, nil
	s.metrics.sessionClosed()
	glog.V(1).Infof("botdriver: session %s closed", id)
	return nil
}

func stopService(svc driverService) {
	if svc == nil {
		return
	}
	if err := svc.Stop(); err != nil {
		glog.Warningf("botdriver: stopping driver service: %v", err)
	}
}

func closeRelay(relay *socksrelay.Relay) {
	if relay == nil {
		return
	}
	if err := relay.Close(); err != nil {
		glog.Warningf("botdriver: closing SOCKS relay: %v", err)
	}
}

func unusedPort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		return 0, err
	}
	return port, nil
}
