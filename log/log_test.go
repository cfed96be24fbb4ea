package log

import (
	"bytes"
	"testing"

	"github.com/panorama-cli/panorama/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestEntry(t *testing.T) {
	Convey("Given logging captured into a buffer", t, func() {
		viper.Set(key.LogsLevel, "debug")
		viper.Set(key.LogsJson, false)
		Reset(func() { enabled = false })

		var buf bytes.Buffer
		SetOutput(&buf)

		Convey("Fields are attached to the message", func() {
			WithFields(Fields{"epoch": 3, "url": "https://cdn.example/master.m3u8"}).Warnf("manifest failed: %s", "timeout")

			out := buf.String()
			So(out, ShouldContainSubstring, "manifest failed: timeout")
			So(out, ShouldContainSubstring, "epoch=3")
			So(out, ShouldContainSubstring, "level=warning")
		})

		Convey("Nothing is written once logging is disabled", func() {
			enabled = false
			Infof("dropped")
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}
