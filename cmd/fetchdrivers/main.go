// Binary fetchdrivers downloads chromedriver, geckodriver and, optionally, the
// browsers they drive, for use with botdriver.NewLocal.
package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/google/go-github/v27/github"

	"github.com/wanmail/botdriver/internal/download"
)

const (
	// desiredChromeBuild is the known build of Chromium to download from the
	// chromium-browser-snapshots/Linux_x64 bucket. It corresponds to version
	// 76.0.3809.0.
	desiredChromeBuild = "664981"

	// desiredFirefoxVersion is the known version of Firefox to download.
	desiredFirefoxVersion = "68.0.1"
)

var (
	dir              = flag.String("dir", ".", "Directory to download into.")
	downloadBrowsers = flag.Bool("download_browsers", true, "If true, download the Firefox and Chrome browsers.")
	downloadLatest   = flag.Bool("download_latest", false, "If true, download the latest versions.")
	chromeBuild      = flag.String("chrome_build", desiredChromeBuild, "Chromium snapshot build number. Ignored with --download_latest.")
	firefoxVersion   = flag.String("firefox_version", desiredFirefoxVersion, "Firefox release. Ignored with --download_latest.")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	build, version := *chromeBuild, *firefoxVersion
	if *downloadLatest {
		build, version = "", ""
	}

	var files []download.File
	chrome, err := download.ChromeFiles(ctx, build)
	if err != nil {
		glog.Errorf("Unable to find Chromium and chromedriver: %v", err)
	}
	files = append(files, chrome...)
	files = append(files, download.FirefoxFile(version))

	gecko, err := download.GeckodriverFile(ctx, github.NewClient(nil))
	if err != nil {
		glog.Errorf("Unable to find the latest Geckodriver: %v", err)
	} else {
		files = append(files, gecko)
	}

	if err := download.DownloadAll(ctx, *dir, files, *downloadBrowsers); err != nil {
		glog.Exit(err)
	}
	glog.Infof("Downloaded %d files to %q", len(files), *dir)
}
