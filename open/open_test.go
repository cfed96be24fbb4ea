package open

import (
	"testing"

	"github.com/panorama-cli/panorama/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("Each platform has its opener", t, func() {
		cmd, ok := command(constant.Linux, "/tmp/panorama")
		So(ok, ShouldBeTrue)
		So(cmd.Args, ShouldResemble, []string{"xdg-open", "/tmp/panorama"})

		cmd, ok = command(constant.Darwin, "/tmp/panorama")
		So(ok, ShouldBeTrue)
		So(cmd.Args, ShouldResemble, []string{"open", "/tmp/panorama"})

		cmd, ok = command(constant.Windows, `C:\panorama`)
		So(ok, ShouldBeTrue)
		So(cmd.Args[1:], ShouldResemble, []string{"url.dll,FileProtocolHandler", `C:\panorama`})
	})

	Convey("Unknown platforms are reported", t, func() {
		_, ok := command("plan9", "/tmp")
		So(ok, ShouldBeFalse)
	})
}
