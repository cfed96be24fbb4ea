package version

import (
	"context"
	"testing"

	"github.com/panorama-cli/panorama/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		for _, tc := range []struct {
			a, b string
			want int
		}{
			{"1.0.0", "1.0.0", 0},
			{"v1.2.0", "1.1.9", 1},
			{"0.3.0", "0.10.0", -1},
			{"2.0", "2.0.0", 0},
			{"1.4.0-rc.1", "1.4.0", 0},
		} {
			got, err := Compare(tc.a, tc.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, tc.want)
		}

		Convey("Rejects malformed versions", func() {
			for _, bad := range []string{"", "1", "a.b.c", "1.2.3.4", "1.-2.0"} {
				_, err := Compare(bad, "1.0.0")
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestLatest(t *testing.T) {
	Convey("Given an in-memory cache", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		Convey("The release tag is fetched once and cached", func() {
			fetcher := &fakeFetcher{body: []byte(`{"tag_name": "v1.2.3"}`)}

			latest, err := Latest(context.Background(), fetcher)
			So(err, ShouldBeNil)
			So(latest, ShouldEqual, "1.2.3")

			latest, err = Latest(context.Background(), fetcher)
			So(err, ShouldBeNil)
			So(latest, ShouldEqual, "1.2.3")
			So(fetcher.calls, ShouldEqual, 1)
		})
	})

	Convey("parseRelease", t, func() {
		_, err := parseRelease([]byte(`{}`))
		So(err, ShouldNotBeNil)

		_, err = parseRelease([]byte(`not json`))
		So(err, ShouldNotBeNil)

		v, err := parseRelease([]byte(`{"tag_name": "0.4.0"}`))
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "0.4.0")
	})
}
