package cmd

import (
	"encoding/json"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/panorama-cli/panorama/history"
	"github.com/panorama-cli/panorama/playback"
	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/stream"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// schemaTargets maps a schema name to a value of the type it describes.
var schemaTargets = map[string]any{
	"state":      &playback.State{},
	"geometry":   &projection.Geometry{},
	"descriptor": &stream.Descriptor{},
	"metadata":   &stream.Metadata{},
	"ladder":     stream.Ladder{},
	"history":    []history.Entry{},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:       "schema <state|geometry|descriptor|metadata|ladder|history>",
	Short:     "Print the JSON schema of a document panorama reads or writes",
	Args:      cobra.ExactArgs(1),
	ValidArgs: lo.Keys(schemaTargets),
	Run: func(cmd *cobra.Command, args []string) {
		target, ok := schemaTargets[args[0]]
		if !ok {
			handleErr(cobra.OnlyValidArgs(cmd, args))
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(reflectSchema(target)))
	},
}

func reflectSchema(v any) *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		switch name {
		case "State", "Entry", "Kind":
			return filepath.Base(t.PkgPath()) + "." + name
		}

		return name
	}

	return reflector.Reflect(v)
}
