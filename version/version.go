// Package version checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/panorama-cli/panorama/filesystem"
	"github.com/panorama-cli/panorama/where"
)

// ReleasesURL is the endpoint describing the latest release.
const ReleasesURL = "https://api.github.com/repos/panorama-cli/panorama/releases/latest"

// Fetcher retrieves the bytes at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var versionCacher = sync.OnceValue(func() *gache.Cache[string] {
	return gache.New[string](&gache.Options{
		Path:       filepath.Join(where.Cache(), "version.json"),
		Lifetime:   time.Hour * 24 * 2,
		FileSystem: &filesystem.GacheFs{},
	})
})

// Latest returns the newest released version, cached for two days.
func Latest(ctx context.Context, fetcher Fetcher) (string, error) {
	cacher := versionCacher()

	if cached, expired, err := cacher.Get(); err == nil && !expired && cached != "" {
		return cached, nil
	}

	body, err := fetcher.Fetch(ctx, ReleasesURL)
	if err != nil {
		return "", err
	}

	version, err := parseRelease(body)
	if err != nil {
		return "", err
	}

	_ = cacher.Set(version)
	return version, nil
}

func parseRelease(body []byte) (string, error) {
	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := json.Unmarshal(body, &release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	return strings.TrimPrefix(release.TagName, "v"), nil
}
