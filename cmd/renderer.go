package cmd

import (
	"bytes"

	"github.com/panorama-cli/panorama/filesystem"
	"github.com/panorama-cli/panorama/log"
	"github.com/panorama-cli/panorama/projection"
)

// meshRenderer stands in for a GPU renderer: it logs every geometry and, when path is
// set, writes the latest one there as JSON.
type meshRenderer struct {
	path string
}

func (r meshRenderer) Present(g projection.Geometry) {
	logger := log.WithFields(log.Fields{
		"component": "renderer",
		"kind":      g.Kind,
		"vertices":  g.Mesh.VertexCount(),
		"triangles": g.Mesh.TriangleCount(),
	})
	logger.Infof("presenting %s", g.Mesh.Name)

	if r.path == "" {
		return
	}

	var buf bytes.Buffer
	if err := projection.Encode(&buf, g); err != nil {
		logger.Errorf("encode geometry: %v", err)
		return
	}

	if err := filesystem.API().WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		logger.Errorf("write %s: %v", r.path, err)
	}
}
