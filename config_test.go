package botdriver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func float(f float64) *float64 { return &f }

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(`
remote: grid.internal
arguments: ["--headless", "--lang=en"]
min_browser_version: "76"
`))
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	want := &Config{
		Browser:           Chrome,
		Remote:            "grid.internal",
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		Arguments:         []string{"--headless", "--lang=en"},
		TimeoutSeconds:    float(DefaultTimeoutSeconds),
		MinBrowserVersion: "76",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("ParseConfig returned diff (-want +got):\n%s", diff)
	}
}

func TestParseConfigTimeout(t *testing.T) {
	for _, tc := range []struct {
		desc string
		yaml string
		want time.Duration
	}{
		{"unset", "remote: grid", DefaultTimeoutSeconds * time.Second},
		{"explicit zero", "remote: grid\ntimeout_seconds: 0", 0},
		{"fractional", "remote: grid\ntimeout_seconds: 0.25", 250 * time.Millisecond},
	} {
		c, err := ParseConfig([]byte(tc.yaml))
		if err != nil {
			t.Errorf("%s: ParseConfig returned error: %v", tc.desc, err)
			continue
		}
		if got := Seconds(c.timeout()); got != tc.want {
			t.Errorf("%s: timeout = %v, want %v", tc.desc, got, tc.want)
		}
	}
}

func TestParseConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		desc string
		yaml string
		want string
	}{
		{"no target", `width: 10`, "needs driver_path or remote"},
		{"two targets", "driver_path: /bin/chromedriver\nremote: grid", "both driver_path and remote"},
		{"browser", "remote: grid\nbrowser: opera", "unsupported browser"},
		{"size", "remote: grid\nwidth: -1", "invalid window size"},
		{"timeout", "remote: grid\ntimeout_seconds: -2", "negative timeout"},
		{"version", "remote: grid\nmin_browser_version: latest", "min_browser_version"},
		{"syntax", "remote: [grid", "parsing config"},
	} {
		_, err := ParseConfig([]byte(tc.yaml))
		if err == nil {
			t.Errorf("%s: ParseConfig returned no error", tc.desc)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: ParseConfig returned %q, want it to mention %q", tc.desc, err, tc.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "firefox.yaml")
	data := "browser: firefox\ndriver_path: /usr/local/bin/geckodriver\ntimeout_seconds: 2.5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if c.Browser != Firefox || c.DriverPath != "/usr/local/bin/geckodriver" {
		t.Errorf("LoadConfig = %+v, want firefox with geckodriver", c)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("LoadConfig returned no error for a missing file")
	}
}

func TestConfigOpen(t *testing.T) {
	st := stub(t)
	c, err := ParseConfig([]byte("browser: firefox\ndriver_path: /usr/local/bin/geckodriver\ntimeout_seconds: 2.5\nwidth: 800\nheight: 600\n"))
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	s, err := c.Open()
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	if got, want := st.browser, Firefox; got != want {
		t.Errorf("started driver for %q, want %q", got, want)
	}
	if got, want := st.addr, "http://localhost:9515"; got != want {
		t.Errorf("remote address = %q, want %q", got, want)
	}
	if got, want := s.Timeout(), 2500*time.Millisecond; got != want {
		t.Errorf("Timeout() = %v, want %v", got, want)
	}
}

func TestConfigOpenRemote(t *testing.T) {
	st := stub(t)
	c, err := ParseConfig([]byte("remote: grid.internal\n"))
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	s, err := c.Open()
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	if got, want := st.addr, "http://grid.internal:4444/wd/hub"; got != want {
		t.Errorf("remote address = %q, want %q", got, want)
	}
	if st.driverPath != "" {
		t.Errorf("a local driver was started for a remote config: %q", st.driverPath)
	}
}
