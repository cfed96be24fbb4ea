package util

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(-10.0, 0, 360), ShouldEqual, 0.0)
		So(Clamp(400.0, 0, 360), ShouldEqual, 360.0)
		So(Clamp(90.0, 0, 360), ShouldEqual, 90.0)
		So(Clamp(math.NaN(), 1, 180), ShouldEqual, 1.0)
		So(Clamp(float32(math.Inf(1)), 0, 180), ShouldEqual, float32(180))
	})
}

func TestMax(t *testing.T) {
	Convey("Max", t, func() {
		So(Max(3, 7, 5), ShouldEqual, 7)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestFormatTimestamp(t *testing.T) {
	Convey("FormatTimestamp", t, func() {
		So(FormatTimestamp(0), ShouldEqual, "0:00")
		So(FormatTimestamp(75.9), ShouldEqual, "1:15")
		So(FormatTimestamp(3725), ShouldEqual, "1:02:05")
		So(FormatTimestamp(math.NaN()), ShouldEqual, "0:00")
		So(FormatTimestamp(-3), ShouldEqual, "0:00")
	})
}

func TestFormatBitrate(t *testing.T) {
	Convey("FormatBitrate", t, func() {
		So(FormatBitrate(0), ShouldEqual, "0 Kbps")
		So(FormatBitrate(640_000), ShouldEqual, "640 Kbps")
		So(FormatBitrate(5_000_000), ShouldEqual, "5.0 Mbps")
	})
}
