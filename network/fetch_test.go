package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/panorama-cli/panorama/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFetcher(t *testing.T) {
	Convey("Given a test server", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/master.m3u8", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Seen-Agent", r.UserAgent())
			_, _ = w.Write([]byte("#EXTM3U\n"))
		})
		mux.HandleFunc("/missing.m3u8", http.NotFound)

		server := httptest.NewServer(mux)
		Reset(server.Close)

		fetcher := &Fetcher{Client: server.Client()}

		Convey("It returns the body of a 200 response", func() {
			body, err := fetcher.Fetch(context.Background(), server.URL+"/master.m3u8")
			So(err, ShouldBeNil)
			So(string(body), ShouldEqual, "#EXTM3U\n")
		})

		Convey("It reports non-2xx statuses", func() {
			_, err := fetcher.Fetch(context.Background(), server.URL+"/missing.m3u8")
			var statusErr *StatusError
			So(errors.As(err, &statusErr), ShouldBeTrue)
			So(statusErr.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("It honors context cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := fetcher.Fetch(ctx, server.URL+"/master.m3u8")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("It identifies itself", func() {
			So(constant.UserAgent, ShouldStartWith, constant.Panorama+"/")
		})
	})
}
