package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackend(t *testing.T) {
	Convey("Given the in-memory backend", t, func() {
		SetMemMapFs()
		Reset(SetOsFs)

		Convey("GacheFs writes through the active backend", func() {
			fs := GacheFs{}
			So(fs.MkdirAll("/meshes", os.ModePerm), ShouldBeNil)

			f, err := fs.OpenFile("/meshes/sphere.json", os.O_CREATE|os.O_WRONLY, 0o644)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte(`{}`))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			data, err := API().ReadFile("/meshes/sphere.json")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{}`)
		})
	})
}
