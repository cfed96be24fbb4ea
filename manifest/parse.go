package manifest

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/panorama-cli/panorama/stream"
	"github.com/samber/lo"
)

const (
	tagPrefix     = "#"
	variantTag    = "#EXT-X-STREAM-INF:"
	iFrameTag     = "#EXT-X-I-FRAME-STREAM-INF"
	byteOrderMark = "\uFEFF"
)

var (
	// bandwidthRegex must not match AVERAGE-BANDWIDTH.
	bandwidthRegex  = regexp.MustCompile(`(?:^|[:,])BANDWIDTH=(\d+)`)
	resolutionRegex = regexp.MustCompile(`(?:^|[:,])RESOLUTION=(\d+)x(\d+)`)
)

// Parse extracts the resolution ladder from a master playlist. Variant URIs are resolved
// against base. The ladder is sorted widest first with duplicate URLs removed.
func Parse(data []byte, base *url.URL) (stream.Ladder, error) {
	if !utf8.Valid(data) {
		return nil, ErrParsing
	}

	text := strings.TrimPrefix(string(data), byteOrderMark)

	lines := lo.Map(strings.Split(text, "\n"), func(line string, _ int) string {
		return strings.TrimSpace(line)
	})

	var ladder stream.Ladder
	for i, line := range lines {
		if !strings.HasPrefix(line, variantTag) {
			continue
		}

		option, ok := parseVariant(line)
		if !ok {
			continue
		}

		uri, ok := nextURI(lines[i+1:])
		if !ok {
			continue
		}

		option.URL = resolve(base, uri)
		ladder = append(ladder, option)
	}

	// options are identified by URL; selection by index would be ambiguous with repeats
	ladder = lo.UniqBy(ladder, stream.ResolutionOption.ID)
	if len(ladder) == 0 {
		return nil, ErrEmpty
	}

	ladder.Sort()
	return ladder, nil
}

func parseVariant(line string) (option stream.ResolutionOption, ok bool) {
	attributes := strings.TrimPrefix(line, variantTag)

	bandwidth := bandwidthRegex.FindStringSubmatch(attributes)
	resolution := resolutionRegex.FindStringSubmatch(attributes)
	if bandwidth == nil || resolution == nil {
		return
	}

	var err error
	if option.Bitrate, err = strconv.Atoi(bandwidth[1]); err != nil {
		return
	}
	if option.Width, err = strconv.Atoi(resolution[1]); err != nil {
		return
	}
	if option.Height, err = strconv.Atoi(resolution[2]); err != nil {
		return
	}

	return option, true
}

// nextURI returns the first non-blank line if it is not a tag.
func nextURI(lines []string) (string, bool) {
	for _, line := range lines {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, tagPrefix):
			return "", false
		default:
			return line, true
		}
	}
	return "", false
}

func resolve(base *url.URL, uri string) string {
	ref, err := url.Parse(uri)
	if err != nil || base == nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}
