package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/config"
	"github.com/panorama-cli/panorama/constant"
	"github.com/panorama-cli/panorama/filesystem"
	"github.com/panorama-cli/panorama/icon"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/style"
	"github.com/panorama-cli/panorama/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// lookupField resolves a config key, suggesting the nearest known key on a miss.
func lookupField(name string) (config.Field, error) {
	if field, ok := config.Default[name]; ok {
		return field, nil
	}

	closest := lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})

	return config.Field{}, fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(name),
		style.Fg(color.Yellow)(closest),
	)
}

// keyArg takes the key from the first positional argument or the --key flag.
func keyArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	if k, _ := cmd.Flags().GetString("key"); k != "" {
		return k, nil
	}

	return "", errors.New("key is required as an argument or --key flag")
}

// valueValidators reject values that parse but would be ignored at runtime.
var valueValidators = map[string]func(v any) error{
	key.PanelScrubberTint: func(v any) error {
		_, err := config.ParseTint(v.(string))
		return err
	},
	key.IconsVariant: func(v any) error {
		if !lo.Contains(icon.AvailableVariants(), v.(string)) {
			return fmt.Errorf("unknown icon variant %q, available: %v", v, icon.AvailableVariants())
		}
		return nil
	},
	key.ScreenFallbackFOV: func(v any) error {
		if fov := v.(float64); fov <= 0 || fov > 360 {
			return fmt.Errorf("field of view must be within (0, 360], got %v", fov)
		}
		return nil
	},
}

// parseValue converts raw command-line values into the type of the field's default.
func parseValue(field config.Field, raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, errors.New("value is required as an argument or --value flag")
	}

	var (
		v   any
		err error
	)

	switch field.Value.(type) {
	case string:
		v = raw[0]
	case int:
		var n int64
		n, err = strconv.ParseInt(raw[0], 10, 64)
		v = int(n)
	case float64:
		v, err = strconv.ParseFloat(raw[0], 64)
	case bool:
		v, err = strconv.ParseBool(raw[0])
	case []string:
		v = raw
	default:
		return nil, fmt.Errorf("key %s has unsupported type %s", field.Key, field.TypeName())
	}

	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q for %s", field.TypeName(), raw[0], field.Key)
	}

	if validate, ok := valueValidators[field.Key]; ok {
		if err := validate(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// persistConfig writes the in-memory settings, creating the file when missing.
func persistConfig() error {
	err := viper.WriteConfig()

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfig()
	}

	return err
}

func configFilePath() string {
	return filepath.Join(where.Config(), constant.Panorama+".toml")
}

// changedFields returns the fields whose effective value differs from the registered default.
func changedFields() []config.Field {
	return lo.Filter(lo.Values(config.Default), func(f config.Field, _ int) bool {
		return !reflect.DeepEqual(viper.Get(f.Key), f.Value)
	})
}

// section is the first segment of a dotted key.
func section(k string) string {
	head, _, _ := strings.Cut(k, ".")
	return head
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change playback, screen and panel settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", nil, "Only describe these keys")
	configInfoCmd.Flags().BoolP("changed", "c", false, "Only describe keys that differ from their defaults")
	configInfoCmd.Flags().BoolP("json", "j", false, "Output as json")
	configInfoCmd.MarkFlagsMutuallyExclusive("key", "changed")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration fields grouped by section",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys    = lo.Must(cmd.Flags().GetStringSlice("key"))
			changed = lo.Must(cmd.Flags().GetBool("changed"))
			asJson  = lo.Must(cmd.Flags().GetBool("json"))
			fields  []config.Field
		)

		switch {
		case len(keys) > 0:
			for _, k := range keys {
				field, err := lookupField(k)
				handleErr(err)
				fields = append(fields, field)
			}
		case changed:
			fields = changedFields()
		default:
			fields = lo.Values(config.Default)
		}

		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		out := cmd.OutOrStdout()
		if asJson {
			handleErr(json.NewEncoder(out).Encode(fields))
			return
		}

		for i, group := range lo.PartitionBy(fields, func(f config.Field) string { return section(f.Key) }) {
			if i > 0 {
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, style.Bold(strings.ToUpper(section(group[0].Key))))
			for _, field := range group {
				fmt.Fprintln(out)
				fmt.Fprintln(out, field.Pretty())
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "The key to update")
	configSetCmd.Flags().StringSliceP("value", "v", nil, "The value to assign")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Update a configuration key and persist it",
	Args:              cobra.MaximumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		name, err := keyArg(cmd, args)
		handleErr(err)

		field, err := lookupField(name)
		handleErr(err)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}

		v, err := parseValue(field, raw)
		handleErr(err)

		viper.Set(name, v)
		handleErr(persistConfig())

		fmt.Fprintf(
			cmd.OutOrStdout(),
			"%s set %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(name),
			style.Fg(color.Yellow)(fmt.Sprint(v)),
		)
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "The key to read")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the effective value of a configuration key",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		name, err := keyArg(cmd, args)
		handleErr(err)

		_, err = lookupField(name)
		handleErr(err)

		fmt.Fprintln(cmd.OutOrStdout(), viper.Get(name))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current settings to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFilePath()

		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(filesystem.API().Remove(path))
		}

		handleErr(viper.SafeWriteConfig())
		fmt.Fprintf(cmd.OutOrStdout(), "%s wrote config to %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFilePath()))
		fmt.Fprintf(cmd.OutOrStdout(), "%s deleted config\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().StringP("key", "k", "", "The key to restore")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	configResetCmd.MarkFlagsOneRequired("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore configuration keys to their defaults",
	Run: func(cmd *cobra.Command, args []string) {
		var fields []config.Field

		if lo.Must(cmd.Flags().GetBool("all")) {
			fields = lo.Values(config.Default)
		} else {
			field, err := lookupField(lo.Must(cmd.Flags().GetString("key")))
			handleErr(err)
			fields = []config.Field{field}
		}

		for _, field := range fields {
			viper.Set(field.Key, field.Value)
		}
		handleErr(persistConfig())

		if len(fields) == 1 {
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s reset %s to %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Fg(color.Purple)(fields[0].Key),
				style.Fg(color.Yellow)(fmt.Sprint(fields[0].Value)),
			)
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s reset %d keys\n", style.Fg(color.Green)(icon.Get(icon.Success)), len(fields))
	},
}
