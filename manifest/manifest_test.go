package manifest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const base = "https://cdn.example.com/lake/master.m3u8"

type fakeFetcher struct {
	body  []byte
	err   error
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls.Add(1)
	return f.body, f.err
}

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func TestParse(t *testing.T) {
	Convey("Given a master playlist with two variants", t, func() {
		playlist := strings.Join([]string{
			"#EXTM3U",
			"#EXT-X-STREAM-INF:BANDWIDTH=2000000,RESOLUTION=1280x720",
			"720/index.m3u8",
			"#EXT-X-STREAM-INF:AVERAGE-BANDWIDTH=8000000,BANDWIDTH=10000000,RESOLUTION=3840x2160,CODECS=\"hvc1\"",
			"https://other.example.com/4k/index.m3u8",
		}, "\n")

		ladder, err := Parse([]byte(playlist), mustURL(base))
		So(err, ShouldBeNil)

		Convey("Both are found widest first", func() {
			So(len(ladder), ShouldEqual, 2)
			So(ladder[0].Width, ShouldEqual, 3840)
			So(ladder[0].Height, ShouldEqual, 2160)
			So(ladder[1].Width, ShouldEqual, 1280)
		})

		Convey("BANDWIDTH is read, not AVERAGE-BANDWIDTH", func() {
			So(ladder[0].Bitrate, ShouldEqual, 10_000_000)
			So(ladder[1].Bitrate, ShouldEqual, 2_000_000)
		})

		Convey("Relative URIs resolve against the playlist and absolute ones are kept", func() {
			So(ladder[0].URL, ShouldEqual, "https://other.example.com/4k/index.m3u8")
			So(ladder[1].URL, ShouldEqual, "https://cdn.example.com/lake/720/index.m3u8")
		})
	})

	Convey("Given many variants in no particular order", t, func() {
		var b strings.Builder
		b.WriteString("\uFEFF#EXTM3U\r\n")
		widths := []int{640, 3840, 1920, 1280, 2560}
		for _, w := range widths {
			fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d\r\n\r\n%d.m3u8\r\n", w*1000, w, w/2, w)
		}

		ladder, err := Parse([]byte(b.String()), mustURL(base))
		So(err, ShouldBeNil)
		So(len(ladder), ShouldEqual, len(widths))
		So(ladder.IsSorted(), ShouldBeTrue)
		So(ladder[0].URL, ShouldEqual, "https://cdn.example.com/lake/3840.m3u8")
	})

	Convey("Declarations without a URI are dropped", t, func() {
		playlist := strings.Join([]string{
			"#EXTM3U",
			"#EXT-X-STREAM-INF:BANDWIDTH=1,RESOLUTION=10x10",
			"#EXT-X-STREAM-INF:BANDWIDTH=2,RESOLUTION=20x20",
			"b.m3u8",
			"#EXT-X-STREAM-INF:BANDWIDTH=3,RESOLUTION=30x30",
		}, "\n")

		ladder, err := Parse([]byte(playlist), mustURL(base))
		So(err, ShouldBeNil)
		So(len(ladder), ShouldEqual, 1)
		So(ladder[0].Width, ShouldEqual, 20)
	})

	Convey("I-frame variants and audio-only variants are ignored", t, func() {
		playlist := strings.Join([]string{
			"#EXTM3U",
			"#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=100000,RESOLUTION=1920x1080,URI=\"iframe.m3u8\"",
			"#EXT-X-STREAM-INF:BANDWIDTH=64000,CODECS=\"mp4a.40.2\"",
			"audio.m3u8",
		}, "\n")

		_, err := Parse([]byte(playlist), mustURL(base))
		So(errors.Is(err, ErrEmpty), ShouldBeTrue)
	})

	Convey("Duplicate URLs collapse to the first declaration", t, func() {
		playlist := strings.Join([]string{
			"#EXT-X-STREAM-INF:BANDWIDTH=1000,RESOLUTION=100x100",
			"same.m3u8",
			"#EXT-X-STREAM-INF:BANDWIDTH=2000,RESOLUTION=200x200",
			"same.m3u8",
		}, "\n")

		ladder, err := Parse([]byte(playlist), mustURL(base))
		So(err, ShouldBeNil)
		So(len(ladder), ShouldEqual, 1)
		So(ladder[0].Width, ShouldEqual, 100)
	})

	Convey("Binary data is a parsing error", t, func() {
		_, err := Parse([]byte{0xff, 0xfe, 0x00, 0x80}, mustURL(base))
		So(errors.Is(err, ErrParsing), ShouldBeTrue)
	})

	Convey("A playlist without variants is empty", t, func() {
		_, err := Parse([]byte("#EXTM3U\n#EXTINF:4.0,\nsegment0.ts\n"), mustURL(base))
		So(errors.Is(err, ErrEmpty), ShouldBeTrue)
	})
}

func TestReader(t *testing.T) {
	Convey("Given a reader", t, func() {
		fetcher := &fakeFetcher{body: []byte("#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080\nhi.m3u8\n")}
		reader := NewReader(base, fetcher)

		Convey("It starts out fetching", func() {
			So(reader.State(), ShouldEqual, Fetching)
			So(reader.Ladder(), ShouldBeEmpty)
			So(reader.Err(), ShouldBeNil)
		})

		Convey("Read succeeds", func() {
			ladder, err := reader.Read(context.Background())
			So(err, ShouldBeNil)
			So(len(ladder), ShouldEqual, 1)
			So(reader.State(), ShouldEqual, Success)
			So(reader.URL(), ShouldEqual, base)
		})

		Convey("It fetches only once", func() {
			for i := 0; i < 3; i++ {
				_, _ = reader.Read(context.Background())
			}
			So(int(fetcher.calls.Load()), ShouldEqual, 1)
		})
	})

	Convey("Given a failing fetcher", t, func() {
		fetcher := &fakeFetcher{err: errors.New("connection refused")}
		reader := NewReader(base, fetcher)

		_, err := reader.Read(context.Background())

		Convey("The failure is a network error", func() {
			So(errors.Is(err, ErrNetwork), ShouldBeTrue)
			So(reader.State(), ShouldEqual, Failed)
			So(reader.Err(), ShouldEqual, err)
		})

		Convey("The outcome is terminal", func() {
			fetcher.err = nil
			fetcher.body = []byte("#EXT-X-STREAM-INF:BANDWIDTH=1,RESOLUTION=1x1\na.m3u8\n")
			_, err = reader.Read(context.Background())
			So(err, ShouldNotBeNil)
			So(reader.State(), ShouldEqual, Failed)
		})
	})

	Convey("State names", t, func() {
		So(Success.String(), ShouldEqual, "success")
		So(State(9).String(), ShouldEqual, "State(9)")
	})
}
