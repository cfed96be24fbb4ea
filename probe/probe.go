// Package probe reads frame dimensions and field of view from a media asset.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/projection"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// ErrNoVideoStream means the asset has no video stream ffprobe could describe.
var ErrNoVideoStream = errors.New("asset has no video stream")

// Info is what probing learned about an asset.
type Info struct {
	Width  int
	Height int
	// HorizontalFOV in degrees, present only when the container says so.
	HorizontalFOV mo.Option[float64]
	// Projection, present only when the container carries spherical metadata.
	Projection mo.Option[projection.Kind]
}

// AspectRatio returns width / height, or zero for degenerate dimensions.
func (i Info) AspectRatio() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return 0
	}
	return float64(i.Width) / float64(i.Height)
}

// FFProbe probes assets with the ffprobe binary.
type FFProbe struct {
	Path string
}

// NewFFProbe returns a prober using probe.ffprobe_path.
func NewFFProbe() *FFProbe {
	path := viper.GetString(key.ProbeFFProbePath)
	if path == "" {
		path = "ffprobe"
	}
	return &FFProbe{Path: path}
}

// Probe runs ffprobe against url.
func (p *FFProbe) Probe(ctx context.Context, url string) (Info, error) {
	cmd := exec.CommandContext(ctx, p.Path,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_streams",
		"-of", "json",
		url,
	)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Info{}, fmt.Errorf("ffprobe: %s: %w", strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return Info{}, fmt.Errorf("ffprobe: %w", err)
	}

	return Parse(output)
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Index        int               `json:"index"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string `json:"side_data_type"`
	Projection   string `json:"projection"`
	// bounds are 0.32 fixed point fractions of the frame cropped from each edge
	BoundLeft   uint32 `json:"bound_left"`
	BoundTop    uint32 `json:"bound_top"`
	BoundRight  uint32 `json:"bound_right"`
	BoundBottom uint32 `json:"bound_bottom"`
}

// boundUnit is 1.0 in 0.32 fixed point.
const boundUnit = 1 << 32

// Parse decodes ffprobe's JSON stream listing.
func Parse(data []byte) (Info, error) {
	var ff ffprobeOutput
	if err := json.Unmarshal(data, &ff); err != nil {
		return Info{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	video, ok := lo.Find(ff.Streams, func(s ffprobeStream) bool {
		return s.CodecType == "video"
	})
	if !ok {
		return Info{}, ErrNoVideoStream
	}

	info := Info{
		Width:  video.Width,
		Height: video.Height,
	}

	spherical, ok := lo.Find(video.SideDataList, func(sd ffprobeSideData) bool {
		return sd.SideDataType == "Spherical Mapping"
	})
	if !ok {
		return info, nil
	}

	switch spherical.Projection {
	case "equirectangular", "tiled equirectangular":
		cropped := (float64(spherical.BoundLeft) + float64(spherical.BoundRight)) / boundUnit
		info.HorizontalFOV = mo.Some(projection.ClampHorizontalFOV(projection.MaxHorizontalFOV * (1 - cropped)))
		info.Projection = mo.Some(projection.Spherical)
	case "fisheye":
		info.HorizontalFOV = mo.Some(180.0)
		info.Projection = mo.Some(projection.Fisheye)
	}

	return info, nil
}
