package botdriver

import (
	"testing"
	"time"

	"github.com/blang/semver"
	"github.com/google/go-cmp/cmp"
	"github.com/tebeka/selenium"
)

func TestNavigation(t *testing.T) {
	wd := newFakeWebDriver()
	wd.title = "Explore | Flickr"
	s := newTestSession(wd, time.Second)

	if err := s.NavigateTo("https://www.flickr.com/explore"); err != nil {
		t.Fatalf("NavigateTo returned error: %v", err)
	}
	u, err := s.CurrentURL()
	if err != nil {
		t.Fatalf("CurrentURL returned error: %v", err)
	}
	if want := "https://www.flickr.com/explore"; u != want {
		t.Errorf("CurrentURL() = %q, want %q", u, want)
	}
	title, err := s.Title()
	if err != nil {
		t.Fatalf("Title returned error: %v", err)
	}
	if title != wd.title {
		t.Errorf("Title() = %q, want %q", title, wd.title)
	}
}

func TestCurrentPageSource(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		result interface{}
		want   string
	}{
		{"markup", "<head></head><body><p>live</p></body>", "<head></head><body><p>live</p></body>"},
		{"null", nil, ""},
	} {
		wd := newFakeWebDriver()
		wd.result = tc.result
		s := newTestSession(wd, time.Second)

		got, err := s.CurrentPageSource()
		if err != nil {
			t.Fatalf("%s: CurrentPageSource returned error: %v", tc.desc, err)
		}
		if got != tc.want {
			t.Errorf("%s: CurrentPageSource() = %q, want %q", tc.desc, got, tc.want)
		}
		if diff := cmp.Diff([]string{pageSourceScript}, wd.scripts); diff != "" {
			t.Errorf("%s: scripts returned diff (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestDocument(t *testing.T) {
	wd := newFakeWebDriver()
	wd.result = `<head><title>x</title></head><body><a class="user" href="/people/a">A</a><a class="user" href="/people/b">B</a></body>`
	s := newTestSession(wd, time.Second)

	doc, err := s.Document()
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	var got []string
	for _, n := range doc.Find("a.user").Nodes {
		for _, a := range n.Attr {
			if a.Key == "href" {
				got = append(got, a.Val)
			}
		}
	}
	if diff := cmp.Diff([]string{"/people/a", "/people/b"}, got); diff != "" {
		t.Errorf("links returned diff (-want +got):\n%s", diff)
	}
}

func TestScrollToBottom(t *testing.T) {
	wd := newFakeWebDriver()
	s := newTestSession(wd, time.Second)

	if err := s.ScrollToBottom(); err != nil {
		t.Fatalf("ScrollToBottom returned error: %v", err)
	}
	if diff := cmp.Diff([]string{scrollToBottomScript}, wd.scripts); diff != "" {
		t.Errorf("scripts returned diff (-want +got):\n%s", diff)
	}
}

func TestBrowserVersion(t *testing.T) {
	for _, tc := range []struct {
		desc string
		caps selenium.Capabilities
		want semver.Version
		fail bool
	}{
		{
			desc: "W3C chrome",
			caps: selenium.Capabilities{"browserVersion": "76.0.3809.25"},
			want: semver.MustParse("76.0.3809"),
		},
		{
			desc: "legacy key",
			caps: selenium.Capabilities{"version": "68.0.1"},
			want: semver.MustParse("68.0.1"),
		},
		{
			desc: "short version",
			caps: selenium.Capabilities{"browserVersion": "68.0"},
			want: semver.MustParse("68.0.0"),
		},
		{
			desc: "missing",
			caps: selenium.Capabilities{"browserName": "chrome"},
			fail: true,
		},
		{
			desc: "garbage",
			caps: selenium.Capabilities{"browserVersion": "nightly"},
			fail: true,
		},
	} {
		wd := newFakeWebDriver()
		wd.caps = tc.caps
		s := newTestSession(wd, time.Second)

		got, err := s.BrowserVersion()
		if tc.fail {
			if err == nil {
				t.Errorf("%s: BrowserVersion() = %s, want an error", tc.desc, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: BrowserVersion returned error: %v", tc.desc, err)
			continue
		}
		if !got.EQ(tc.want) {
			t.Errorf("%s: BrowserVersion() = %s, want %s", tc.desc, got, tc.want)
		}
	}
}
