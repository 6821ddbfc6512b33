package botdriver

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/blang/semver"
)

const (
	pageSourceScript     = "return document.documentElement.innerHTML"
	scrollToBottomScript = "window.scrollTo(0, document.body.scrollHeight)"
)

// NavigateTo loads url in the current window. It blocks until the page has
// loaded or the configured timeout expires.
func (s *Session) NavigateTo(url string) error {
	return s.do("navigate", func() error {
		if err := s.wd.Get(url); err != nil {
			return fmt.Errorf("botdriver: navigating to %q: %w", url, err)
		}
		return nil
	})
}

// CurrentURL returns the URL of the current page.
func (s *Session) CurrentURL() (string, error) {
	var u string
	err := s.do("current_url", func() error {
		var err error
		u, err = s.wd.CurrentURL()
		return err
	})
	return u, err
}

// Title returns the current document's title.
func (s *Session) Title() (string, error) {
	var t string
	err := s.do("title", func() error {
		var err error
		t, err = s.wd.Title()
		return err
	})
	return t, err
}

// CurrentPageSource returns the markup of the live DOM, including any
// content scripts have added since the page loaded. This differs from the
// driver's page source, which some drivers take from the original response.
func (s *Session) CurrentPageSource() (string, error) {
	var src string
	err := s.do("page_source", func() error {
		var err error
		src, err = s.pageSource()
		return err
	})
	return src, err
}

func (s *Session) pageSource() (string, error) {
	v, err := s.wd.ExecuteScript(pageSourceScript, nil)
	if err != nil {
		return "", fmt.Errorf("botdriver: reading page source: %w", err)
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Document parses the live DOM, as returned by CurrentPageSource.
func (s *Session) Document() (*goquery.Document, error) {
	var doc *goquery.Document
	err := s.do("document", func() error {
		src, err := s.pageSource()
		if err != nil {
			return err
		}
		doc, err = goquery.NewDocumentFromReader(strings.NewReader(src))
		if err != nil {
			return fmt.Errorf("botdriver: parsing page source: %w", err)
		}
		return nil
	})
	return doc, err
}

// ScrollToBottom scrolls the page to its full height, which makes pages with
// infinite scrolling load their next batch.
func (s *Session) ScrollToBottom() error {
	return s.do("scroll_to_bottom", func() error {
		if _, err := s.wd.ExecuteScript(scrollToBottomScript, nil); err != nil {
			return fmt.Errorf("botdriver: scrolling to bottom: %w", err)
		}
		return nil
	})
}

// BrowserVersion returns the version the browser reported when the session
// was created. Components past the patch level are dropped.
func (s *Session) BrowserVersion() (semver.Version, error) {
	var v semver.Version
	err := s.do("browser_version", func() error {
		var err error
		v, err = s.browserVersion()
		return err
	})
	return v, err
}

func (s *Session) browserVersion() (semver.Version, error) {
	caps, err := s.wd.Capabilities()
	if err != nil {
		return semver.Version{}, fmt.Errorf("botdriver: reading capabilities: %w", err)
	}
	var raw string
	for _, key := range []string{"browserVersion", "version"} {
		if v, ok := caps[key].(string); ok && v != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		return semver.Version{}, fmt.Errorf("botdriver: browser did not report a version")
	}
	return parseBrowserVersion(raw)
}

// parseBrowserVersion accepts versions such as "76.0.3809.25" or "68.0.1",
// keeping at most major, minor and patch.
func parseBrowserVersion(raw string) (semver.Version, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ".", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v, err := semver.ParseTolerant(strings.Join(parts, "."))
	if err != nil {
		return semver.Version{}, fmt.Errorf("botdriver: parsing browser version %q: %w", raw, err)
	}
	return v, nil
}

// checkVersion fails if the browser is older than min. It is called while
// the session is being built, before it is handed to the caller.
func (s *Session) checkVersion(min semver.Version) error {
	v, err := s.browserVersion()
	if err != nil {
		return err
	}
	if v.LT(min) {
		return fmt.Errorf("botdriver: browser version %s is older than required %s", v, min)
	}
	return nil
}
