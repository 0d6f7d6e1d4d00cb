// Package cli holds the parcelcad command tree and its configuration.
package cli

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"parcelcad/internal/cad"
	"parcelcad/internal/crs"
	"parcelcad/internal/tui"
	"parcelcad/internal/uldk"
)

// Version is the parcelcad release.
const Version = "0.3.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func defaultHost() string {
	if runtime.GOOS == "windows" {
		return hostAutoCAD
	}
	return hostPreview
}

func init() {
	// Options are the configuration options available to parcelcad.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "input",
			usage: `
              input is the point to look up, "x,y" in EPSG:2180 metres.
              The ui command uses it as the initial field value.`,
			shorthand:  "i",
			defaultVal: tui.DefaultInput,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "registry.url",
			usage: `
              registry.url is the ULDK service endpoint.`,
			defaultVal: uldk.DefaultURL,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "registry.timeout",
			usage: `
              registry.timeout bounds every registry request.`,
			defaultVal: 30 * time.Second,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "registry.fields",
			usage: `
              registry.fields lists extra result fields requested next to
              the geometry, for example teryt,voivodeship,county,commune.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "host",
			usage: `
              host selects the drawing host: autocad draws in a running
              AutoCAD over COM (Windows only), preview draws on the
              terminal canvas.`,
			defaultVal: defaultHost(),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "autocad.progid",
			usage: `
              autocad.progid is the COM class used to reach AutoCAD.`,
			defaultVal: cad.DefaultProgID,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "render.stop-on-error",
			usage: `
              render.stop-on-error stops drawing a multipolygon at the
              first ring the host rejects. By default every ring is
              attempted.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "map.open",
			usage: `
              map.open opens the map viewer in the default browser after
              drawing. When false the URL is only reported.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "map.url",
			usage: `
              map.url is the map viewer template; {lat} and {lon} are
              replaced with WGS84 degrees.`,
			defaultVal: crs.DefaultMapURL,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log.level",
			usage: `
              log.level is one of trace, debug, info, warn, error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log.file",
			usage: `
              log.file appends log records to a file. The ui command
              discards logs unless it is set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = newConfig()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case time.Duration:
				set.DurationP(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

// newConfig returns a viper instance reading PARCELCAD_* environment
// variables, so registry.url is PARCELCAD_REGISTRY_URL.
func newConfig() *viper.Viper {
	v := viper.New()
	// Set the prefix for configuration environment variables.
	v.SetEnvPrefix("PARCELCAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(uiCmd)
	Root.AddCommand(drawCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("parcelcad: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command. Without a subcommand it starts the ui.
var Root = &cobra.Command{
	Use:   "parcelcad",
	Short: "Draw ULDK parcel and commune boundaries in a CAD drawing.",
	Long: `parcelcad looks up the cadastral parcel and the commune containing a point
given in the Polish national grid (EPSG:2180) using the ULDK registry service,
draws both boundaries as closed polylines (parcel red, commune green) and opens
a web map at the point.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PARCELCAD_var' where 'var'
is the name of the variable with dots replaced by underscores, for example
PARCELCAD_REGISTRY_URL.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	RunE:              runUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of parcelcad.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("parcelcad v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Start the interactive terminal interface.",
	Long: `ui starts the interactive interface: type a point, press Enter and the
parcel and commune boundaries are drawn. With the preview host the drawing
is shown in the terminal.`,
	Args:              cobra.NoArgs,
	RunE:              runUI,
	DisableAutoGenTag: true,
}

var drawCmd = &cobra.Command{
	Use:   "draw [x,y]",
	Short: "Look up and draw the boundaries at one point.",
	Long: `draw runs a single lookup without the interactive interface and prints
every notice. The point comes from the argument or, when it is missing, from
the input option. With the preview host the drawing is printed as well.`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              runDraw,
	DisableAutoGenTag: true,
}
