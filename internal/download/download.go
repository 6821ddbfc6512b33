// Package download fetches the driver binaries and browsers that local
// sessions run against.
package download

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/golang/glog"
	"github.com/google/go-github/v27/github"
	"golang.org/x/sync/errgroup"
)

// File describes how to download a file from the Web.
type File struct {
	URL  string
	Name string
	// Hash is the expected hex digest. Empty disables verification.
	Hash     string
	HashType string // default is sha256
	// Rename, if it has two elements, moves Rename[0] to Rename[1] after
	// unpacking. Both are relative to the download directory.
	Rename []string
	// Browser marks a browser package rather than a driver.
	Browser bool
}

func (f File) path(dir string) string {
	return filepath.Join(dir, f.Name)
}

func (f File) newHash() hash.Hash {
	switch strings.ToLower(f.HashType) {
	case "md5":
		return md5.New()
	case "sha1":
		return sha1.New()
	default:
		return sha256.New()
	}
}

// LatestRelease describes the first asset of the latest release of
// github.com/owner/repo whose name matches assetPattern. It is stored as
// localName.
func LatestRelease(ctx context.Context, client *github.Client, owner, repo, assetPattern, localName string) (File, error) {
	assetNameRE, err := regexp.Compile(assetPattern)
	if err != nil {
		return File{}, fmt.Errorf("invalid asset name regular expression %q: %v", assetPattern, err)
	}
	rel, _, err := client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return File{}, err
	}
	for _, a := range rel.Assets {
		if !assetNameRE.MatchString(a.GetName()) {
			continue
		}
		u := a.GetBrowserDownloadURL()
		if u == "" {
			return File{}, fmt.Errorf("%s does not have a download URL", a.GetName())
		}
		return File{Name: localName, URL: u}, nil
	}
	return File{}, fmt.Errorf("release for %s not found at https://github.com/%s/%s/releases", assetPattern, owner, repo)
}

// GeckodriverFile describes the latest linux64 geckodriver release.
func GeckodriverFile(ctx context.Context, client *github.Client) (File, error) {
	return LatestRelease(ctx, client, "mozilla", "geckodriver", `geckodriver-.*linux64\.tar\.gz$`, "geckodriver.tar.gz")
}

// FirefoxFile describes a Firefox release for linux, or the current nightly
// if version is empty.
func FirefoxFile(version string) File {
	if version == "" {
		return File{
			URL:     "https://download.mozilla.org/?product=firefox-nightly-latest-ssl&os=linux64&lang=en-US",
			Name:    "firefox-nightly.tar.bz2",
			Browser: true,
			Rename:  []string{"firefox", "firefox-nightly"},
		}
	}
	v := url.PathEscape(version)
	return File{
		URL:     "https://download-installer.cdn.mozilla.net/pub/firefox/releases/" + v + "/linux-x86_64/en-US/firefox-" + v + ".tar.bz2",
		Name:    "firefox.tar.bz2",
		Browser: true,
	}
}

// Download fetches file into dir unless a copy with the expected hash is
// already there, then unpacks and renames it. An empty dir means the current
// directory.
func Download(ctx context.Context, file File, dir string) error {
	if dir == "" {
		dir = "."
	}
	if file.Hash != "" && fileSameHash(file, dir) {
		glog.Infof("Skipping file %q which has already been downloaded.", file.Name)
	} else {
		glog.Infof("Downloading %q from %q", file.Name, file.URL)
		if err := downloadFile(ctx, file, dir); err != nil {
			return err
		}
	}

	if err := unpack(file, dir); err != nil {
		return err
	}

	if rename := file.Rename; len(rename) == 2 {
		from := filepath.Join(dir, rename[0])
		to := filepath.Join(dir, rename[1])
		glog.Infof("Renaming %q to %q", from, to)
		os.RemoveAll(to) // Ignore error.
		if err := os.Rename(from, to); err != nil {
			glog.Warningf("Error renaming %q to %q: %v", from, to, err)
		}
	}
	return nil
}

// DownloadAll downloads files into dir in parallel. Browser packages are
// skipped unless browsers is set. The first failure cancels the remaining
// downloads.
func DownloadAll(ctx context.Context, dir string, files []File, browsers bool) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		if file.Browser && !browsers {
			glog.Infof("Skipping %q because browser downloads are disabled.", file.Name)
			continue
		}
		file := file
		g.Go(func() error {
			if err := Download(ctx, file, dir); err != nil {
				return fmt.Errorf("error handling %s: %v", file.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func downloadFile(ctx context.Context, file File, dir string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("%s: %v", file.Name, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: error downloading %q: %s", file.Name, file.URL, resp.Status)
	}

	p := file.path(dir)
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("error creating %q: %v", p, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing %q: %v", p, closeErr)
		}
	}()

	if file.Hash == "" {
		if _, err := io.Copy(f, resp.Body); err != nil {
			return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
		}
		return nil
	}
	h := file.newHash()
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != file.Hash {
		return fmt.Errorf("%s: got %s hash %q, want %q", file.Name, file.HashType, got, file.Hash)
	}
	return nil
}

func fileSameHash(file File, dir string) bool {
	f, err := os.Open(file.path(dir))
	if err != nil {
		return false
	}
	defer f.Close()

	h := file.newHash()
	if _, err := io.Copy(h, f); err != nil {
		return false
	}
	sum := hex.EncodeToString(h.Sum(nil))
	if sum != file.Hash {
		glog.Warningf("File %q: got hash %q, expect hash %q", file.Name, sum, file.Hash)
		return false
	}
	return true
}

// execCommand is replaced in tests.
var execCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func unpack(file File, dir string) error {
	var cmd []string
	p := file.path(dir)
	switch path.Ext(file.Name) {
	case ".zip":
		cmd = []string{"unzip", "-o", "-d", dir, p}
	case ".gz":
		cmd = []string{"tar", "-xzf", p, "-C", dir}
	case ".bz2":
		cmd = []string{"tar", "-xjf", p, "-C", dir}
	default:
		return nil
	}
	glog.Infof("Unzipping %q", p)
	if err := execCommand(cmd[0], cmd[1:]...); err != nil {
		return fmt.Errorf("error unzipping %q: %v", file.Name, err)
	}
	return nil
}
