package botdriver

import (
	"errors"
	"time"

	"github.com/tebeka/selenium"
)

var errNoSuchElement = &selenium.Error{
	Err:      "no such element",
	Message:  "Unable to locate element",
	HTTPCode: 404,
}

// fakeWebDriver answers the subset of WebDriver used by Session. Calling any
// other method panics on the nil embedded interface.
type fakeWebDriver struct {
	selenium.WebDriver

	sessionID string
	caps      selenium.Capabilities

	// elements maps a CSS selector to the elements it matches.
	elements map[string][]selenium.WebElement
	// findErr, if set, is returned by every lookup.
	findErr error
	// findPanic, if set, makes every lookup panic with it.
	findPanic interface{}

	implicitWaits   []time.Duration
	pageLoadTimeout time.Duration
	scriptTimeout   time.Duration
	timeoutErr      error

	url     string
	title   string
	scripts []string
	result  interface{}

	cookies   []selenium.Cookie
	cookieErr error

	quitCalls int
	quitErr   error
}

func newFakeWebDriver() *fakeWebDriver {
	return &fakeWebDriver{
		sessionID: "fake-session",
		elements:  make(map[string][]selenium.WebElement),
	}
}

func (wd *fakeWebDriver) SessionID() string { return wd.sessionID }

func (wd *fakeWebDriver) Capabilities() (selenium.Capabilities, error) {
	return wd.caps, nil
}

func (wd *fakeWebDriver) SetPageLoadTimeout(d time.Duration) error {
	wd.pageLoadTimeout = d
	return wd.timeoutErr
}

func (wd *fakeWebDriver) SetAsyncScriptTimeout(d time.Duration) error {
	wd.scriptTimeout = d
	return wd.timeoutErr
}

func (wd *fakeWebDriver) SetImplicitWaitTimeout(d time.Duration) error {
	wd.implicitWaits = append(wd.implicitWaits, d)
	return wd.timeoutErr
}

// implicitWait returns the implicit wait currently in effect.
func (wd *fakeWebDriver) implicitWait() time.Duration {
	if len(wd.implicitWaits) == 0 {
		return 0
	}
	return wd.implicitWaits[len(wd.implicitWaits)-1]
}

func (wd *fakeWebDriver) FindElements(by, value string) ([]selenium.WebElement, error) {
	if by != selenium.ByCSSSelector {
		return nil, errors.New("unexpected locator strategy " + by)
	}
	if wd.findPanic != nil {
		panic(wd.findPanic)
	}
	if wd.findErr != nil {
		return nil, wd.findErr
	}
	return wd.elements[value], nil
}

func (wd *fakeWebDriver) FindElement(by, value string) (selenium.WebElement, error) {
	elems, err := wd.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, errNoSuchElement
	}
	return elems[0], nil
}

func (wd *fakeWebDriver) Get(url string) error {
	wd.url = url
	return nil
}

func (wd *fakeWebDriver) CurrentURL() (string, error) { return wd.url, nil }

func (wd *fakeWebDriver) Title() (string, error) { return wd.title, nil }

func (wd *fakeWebDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	wd.scripts = append(wd.scripts, script)
	return wd.result, nil
}

func (wd *fakeWebDriver) GetCookies() ([]selenium.Cookie, error) {
	return wd.cookies, wd.cookieErr
}

func (wd *fakeWebDriver) AddCookie(c *selenium.Cookie) error {
	if wd.cookieErr != nil {
		return wd.cookieErr
	}
	wd.cookies = append(wd.cookies, *c)
	return nil
}

func (wd *fakeWebDriver) Quit() error {
	wd.quitCalls++
	return wd.quitErr
}

type fakeElement struct {
	selenium.WebElement

	name       string
	hidden     bool
	displayErr error
	attrs      map[string]string
	clicks     int
	keys       []string
}

func (e *fakeElement) IsDisplayed() (bool, error) {
	if e.displayErr != nil {
		return false, e.displayErr
	}
	return !e.hidden, nil
}

func (e *fakeElement) GetAttribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Click() error {
	e.clicks++
	return nil
}

func (e *fakeElement) SendKeys(keys string) error {
	e.keys = append(e.keys, keys)
	return nil
}

type fakeService struct {
	stops   int
	stopErr error
}

func (s *fakeService) Stop() error {
	s.stops++
	return s.stopErr
}

// newTestSession wraps wd in a Session as connect would, with timeout applied.
func newTestSession(wd *fakeWebDriver, timeout time.Duration) *Session {
	s := &Session{wd: wd, timeout: timeout}
	if err := s.applyTimeouts(); err != nil {
		panic(err)
	}
	return s
}
