package download

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	// Bucket URL: https://console.cloud.google.com/storage/browser/chromium-browser-snapshots
	snapshotBucket       = "chromium-browser-snapshots"
	prefixLinux64        = "Linux_x64"
	lastChangeFile       = "Linux_x64/LAST_CHANGE"
	chromeFilename       = "chrome-linux.zip"
	chromeDriverFilename = "chromedriver_linux64.zip"
)

// objectInfo is what ChromeFiles needs to know about a bucket object.
type objectInfo struct {
	mediaLink string
	md5       []byte
}

// bucket is the read-only view of the snapshot bucket used by ChromeFiles.
type bucket interface {
	read(ctx context.Context, object string) ([]byte, error)
	attrs(ctx context.Context, object string) (objectInfo, error)
}

type gcsBucket struct {
	bkt *storage.BucketHandle
}

func (b gcsBucket) read(ctx context.Context, object string) ([]byte, error) {
	r, err := b.bkt.Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

func (b gcsBucket) attrs(ctx context.Context, object string) (objectInfo, error) {
	a, err := b.bkt.Object(object).Attrs(ctx)
	if err != nil {
		return objectInfo{}, err
	}
	return objectInfo{mediaLink: a.MediaLink, md5: a.MD5}, nil
}

// openSnapshotBucket is replaced in tests.
var openSnapshotBucket = func(ctx context.Context) (bucket, error) {
	client, err := storage.NewClient(ctx, option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		return nil, fmt.Errorf("cannot create a storage client for downloading the chrome browser: %v", err)
	}
	return gcsBucket{client.Bucket(snapshotBucket)}, nil
}

// ChromeFiles describes the Chromium snapshot and the chromedriver built with
// it. An empty build selects the latest snapshot.
func ChromeFiles(ctx context.Context, build string) ([]File, error) {
	gcsPath := fmt.Sprintf("gs://%s/", snapshotBucket)
	bkt, err := openSnapshotBucket(ctx)
	if err != nil {
		return nil, err
	}
	if build == "" {
		data, err := bkt.read(ctx, lastChangeFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read from %s%s file: %v", gcsPath, lastChangeFile, err)
		}
		build = strings.TrimSpace(string(data))
	}

	chromePackage := path.Join(prefixLinux64, build, chromeFilename)
	chrome, err := bkt.attrs(ctx, chromePackage)
	if err != nil {
		return nil, fmt.Errorf("cannot get the chrome package %s%s attrs: %v", gcsPath, chromePackage, err)
	}
	driverPackage := path.Join(prefixLinux64, build, chromeDriverFilename)
	driver, err := bkt.attrs(ctx, driverPackage)
	if err != nil {
		return nil, fmt.Errorf("cannot get the chrome driver package %s%s attrs: %v", gcsPath, driverPackage, err)
	}

	return []File{
		{
			Name:     chromeFilename,
			URL:      chrome.mediaLink,
			Hash:     hex.EncodeToString(chrome.md5),
			HashType: "md5",
			Browser:  true,
		},
		{
			Name:     "chromedriver.zip",
			URL:      driver.mediaLink,
			Hash:     hex.EncodeToString(driver.md5),
			HashType: "md5",
			Rename:   []string{"chromedriver_linux64/chromedriver", "chromedriver"},
		},
	}, nil
}
