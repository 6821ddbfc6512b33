package botdriver

import (
	"fmt"

	"github.com/tebeka/selenium"
)

// DefaultAttribute is the attribute read by Attributes when none is named.
const DefaultAttribute = "href"

// QueryOption adjusts how Elements and Attributes select elements.
type QueryOption func(*query)

type query struct {
	includeHidden  bool
	noImplicitWait bool
}

// IncludeHidden keeps elements the browser does not display. By default only
// displayed elements are returned.
func IncludeHidden() QueryOption {
	return func(q *query) { q.includeHidden = true }
}

// NoImplicitWait makes the lookup return immediately instead of polling for
// the configured timeout. The implicit wait is restored afterwards.
func NoImplicitWait() QueryOption {
	return func(q *query) { q.noImplicitWait = true }
}

// Elements returns the elements matching the CSS selector, in document order.
// No match is not an error: the result is then empty.
func (s *Session) Elements(selector string, opts ...QueryOption) ([]selenium.WebElement, error) {
	var elems []selenium.WebElement
	err := s.do("elements", func() error {
		var err error
		elems, err = s.elements(selector, opts)
		return err
	})
	return elems, err
}

// Attributes returns the value of attribute for every element Elements would
// return. An empty attribute name reads DefaultAttribute. Values are passed
// through as the browser reports them.
func (s *Session) Attributes(selector, attribute string, opts ...QueryOption) ([]string, error) {
	if attribute == "" {
		attribute = DefaultAttribute
	}
	var values []string
	err := s.do("attributes", func() error {
		elems, err := s.elements(selector, opts)
		if err != nil {
			return err
		}
		values = make([]string, 0, len(elems))
		for _, e := range elems {
			v, err := e.GetAttribute(attribute)
			if err != nil {
				return fmt.Errorf("botdriver: reading %q of %q: %w", attribute, selector, err)
			}
			values = append(values, v)
		}
		return nil
	})
	return values, err
}

func (s *Session) elements(selector string, opts []QueryOption) ([]selenium.WebElement, error) {
	var q query
	for _, opt := range opts {
		opt(&q)
	}

	var found []selenium.WebElement
	find := func() error {
		var err error
		found, err = s.wd.FindElements(selenium.ByCSSSelector, selector)
		if IsNoSuchElement(err) {
			found, err = nil, nil
		}
		if err != nil {
			return fmt.Errorf("botdriver: finding %q: %w", selector, err)
		}
		return nil
	}
	var err error
	if q.noImplicitWait {
		err = s.withImplicitWait(0, find)
	} else {
		err = find()
	}
	if err != nil {
		return nil, err
	}
	if q.includeHidden {
		return found, nil
	}

	displayed := make([]selenium.WebElement, 0, len(found))
	for _, e := range found {
		ok, err := e.IsDisplayed()
		if isStaleElement(err) || IsNoSuchElement(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("botdriver: checking visibility of %q: %w", selector, err)
		}
		if ok {
			displayed = append(displayed, e)
		}
	}
	return displayed, nil
}

// ClickIfPresent clicks the first element matching selector, if there is one.
// The lookup does not wait for the element to appear.
func (s *Session) ClickIfPresent(selector string) error {
	return s.do("click_if_present", func() error {
		return s.withImplicitWait(0, func() error {
			err := s.click(selector)
			if IsNoSuchElement(err) {
				debugLog("botdriver: nothing to click at %q", selector)
				return nil
			}
			return err
		})
	})
}

// Click clicks the first element matching selector, waiting up to the
// configured timeout for it to appear. Absence is reported as an error for
// which IsNoSuchElement is true.
func (s *Session) Click(selector string) error {
	return s.do("click", func() error {
		return s.click(selector)
	})
}

func (s *Session) click(selector string) error {
	elem, err := s.wd.FindElement(selenium.ByCSSSelector, selector)
	if err != nil {
		return fmt.Errorf("botdriver: finding %q: %w", selector, err)
	}
	if err := elem.Click(); err != nil {
		return fmt.Errorf("botdriver: clicking %q: %w", selector, err)
	}
	return nil
}

// InputWrite types text into the first element matching selector.
func (s *Session) InputWrite(selector, text string) error {
	return s.do("input_write", func() error {
		return s.sendKeys(selector, text)
	})
}

// EnterKey presses Enter in the first element matching selector.
func (s *Session) EnterKey(selector string) error {
	return s.do("enter_key", func() error {
		return s.sendKeys(selector, selenium.EnterKey)
	})
}

func (s *Session) sendKeys(selector, keys string) error {
	elem, err := s.wd.FindElement(selenium.ByCSSSelector, selector)
	if err != nil {
		return fmt.Errorf("botdriver: finding %q: %w", selector, err)
	}
	if err := elem.SendKeys(keys); err != nil {
		return fmt.Errorf("botdriver: typing into %q: %w", selector, err)
	}
	return nil
}
