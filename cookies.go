package botdriver

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tebeka/selenium"
)

// Cookie is a browser cookie. A nil Expiry marks a session cookie.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
	Secure bool
	Expiry *time.Time
}

// Keys of the cookie exchange format.
const (
	cookieName   = "name"
	cookieValue  = "value"
	cookieDomain = "domain"
	cookiePath   = "path"
	cookieSecure = "secure"
	cookieExpiry = "expiry"
)

// CookieFromMap builds a Cookie from its exchange form: the string fields
// "name", "value", "domain" and "path" are required, "secure" is an optional
// boolean and "expiry" an optional number of milliseconds since the Unix
// epoch.
func CookieFromMap(m map[string]interface{}) (Cookie, error) {
	return cookieFromMap(0, m)
}

func cookieFromMap(index int, m map[string]interface{}) (Cookie, error) {
	var c Cookie
	for _, f := range []struct {
		key string
		dst *string
	}{
		{cookieName, &c.Name},
		{cookieValue, &c.Value},
		{cookieDomain, &c.Domain},
		{cookiePath, &c.Path},
	} {
		v, ok := m[f.key]
		if !ok || v == nil {
			return Cookie{}, &CookieError{Index: index, Field: f.key, Reason: "is missing"}
		}
		s, ok := v.(string)
		if !ok {
			return Cookie{}, &CookieError{Index: index, Field: f.key, Reason: fmt.Sprintf("is %T, not a string", v)}
		}
		*f.dst = s
	}

	if v, ok := m[cookieSecure]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return Cookie{}, &CookieError{Index: index, Field: cookieSecure, Reason: fmt.Sprintf("is %T, not a boolean", v)}
		}
		c.Secure = b
	}

	if v, ok := m[cookieExpiry]; ok && v != nil {
		ms, err := milliseconds(v)
		if err != nil {
			return Cookie{}, &CookieError{Index: index, Field: cookieExpiry, Reason: err.Error()}
		}
		t := time.UnixMilli(ms).UTC()
		c.Expiry = &t
	}
	return c, nil
}

func milliseconds(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return floatMilliseconds(n)
	case float32:
		return floatMilliseconds(float64(n))
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintMilliseconds(uint64(n))
	case uint32:
		return int64(n), nil
	case uint64:
		return uintMilliseconds(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("is not a number: %v", err)
		}
		return floatMilliseconds(f)
	default:
		return 0, fmt.Errorf("is %T, not a number", v)
	}
}

func floatMilliseconds(f float64) (int64, error) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, fmt.Errorf("is not a finite number")
	case f >= math.MaxInt64 || f < math.MinInt64:
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int64(f), nil
}

func uintMilliseconds(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%d is out of range", u)
	}
	return int64(u), nil
}

// Map returns the cookie in its exchange form, the inverse of CookieFromMap.
func (c Cookie) Map() map[string]interface{} {
	m := map[string]interface{}{
		cookieName:   c.Name,
		cookieValue:  c.Value,
		cookieDomain: c.Domain,
		cookiePath:   c.Path,
		cookieSecure: c.Secure,
	}
	if c.Expiry != nil {
		m[cookieExpiry] = c.Expiry.UnixMilli()
	}
	return m
}

// webDriverCookie converts c for the WebDriver cookie endpoint, which counts
// expiry in whole seconds and treats zero as a session cookie.
func (c Cookie) webDriverCookie() *selenium.Cookie {
	wc := &selenium.Cookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: c.Domain,
		Path:   c.Path,
		Secure: c.Secure,
	}
	if c.Expiry != nil {
		wc.Expiry = expirySeconds(*c.Expiry)
	}
	return wc
}

// expirySeconds rounds t up to whole seconds. WebDriver reads an expiry of 0
// as a session cookie, so anything at or before the epoch is sent as 1, which
// is already expired.
func expirySeconds(t time.Time) uint {
	ms := t.UnixMilli()
	if ms <= 1000 {
		return 1
	}
	secs := ms / 1000
	if ms%1000 != 0 {
		secs++
	}
	return uint(secs)
}

func fromWebDriverCookie(wc selenium.Cookie) Cookie {
	c := Cookie{
		Name:   wc.Name,
		Value:  wc.Value,
		Domain: wc.Domain,
		Path:   wc.Path,
		Secure: wc.Secure,
	}
	if wc.Expiry != 0 {
		t := time.Unix(int64(wc.Expiry), 0).UTC()
		c.Expiry = &t
	}
	return c
}

// Cookies returns every cookie the browser holds for the current page.
func (s *Session) Cookies() ([]Cookie, error) {
	var cookies []Cookie
	err := s.do("get_cookies", func() error {
		var err error
		cookies, err = s.cookies()
		return err
	})
	return cookies, err
}

func (s *Session) cookies() ([]Cookie, error) {
	wcs, err := s.wd.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("botdriver: reading cookies: %w", err)
	}
	cookies := make([]Cookie, 0, len(wcs))
	for _, wc := range wcs {
		cookies = append(cookies, fromWebDriverCookie(wc))
	}
	return cookies, nil
}

// SetCookies adds cookies given in exchange form to the browser. The browser
// only accepts cookies for the domain of the current page. All entries are
// checked before any is added; a malformed entry fails the call with a
// *CookieError.
func (s *Session) SetCookies(cookies []map[string]interface{}) error {
	return s.do("set_cookies", func() error {
		return s.setCookies(cookies)
	})
}

func (s *Session) setCookies(entries []map[string]interface{}) error {
	cookies := make([]Cookie, 0, len(entries))
	for i, m := range entries {
		c, err := cookieFromMap(i, m)
		if err != nil {
			return err
		}
		cookies = append(cookies, c)
	}
	for _, c := range cookies {
		if err := s.wd.AddCookie(c.webDriverCookie()); err != nil {
			return fmt.Errorf("botdriver: adding cookie %q for %q: %w", c.Name, c.Domain, err)
		}
	}
	debugLog("botdriver: added %d cookies", len(cookies))
	return nil
}

// ExportCookies writes the browser's cookies to w as a JSON array in exchange
// form.
func (s *Session) ExportCookies(w io.Writer) error {
	return s.do("export_cookies", func() error {
		cookies, err := s.cookies()
		if err != nil {
			return err
		}
		out := make([]map[string]interface{}, 0, len(cookies))
		for _, c := range cookies {
			out = append(out, c.Map())
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("botdriver: writing cookies: %w", err)
		}
		return nil
	})
}

// ImportCookies reads a JSON array of cookies in exchange form from r, as
// written by ExportCookies, and adds them to the browser.
func (s *Session) ImportCookies(r io.Reader) error {
	var entries []map[string]interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("botdriver: reading cookies: %w", err)
	}
	return s.SetCookies(entries)
}
