package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/storagestats/gcs-stats/constants"
)

// Options holds the command-line settings shared by all our apps.
// Each app uses the subset it needs.
type Options struct {
	ChannelBufferSize int
	ConfigDir         string
	ConfigName        string
	MaxAttempts       int
	NumWorkers        int
	ObjectID          string
	PidFile           string
	PrintHelp         bool
	RequeueTimeout    time.Duration
}

var defaultAttempts = 5
var defaultBufSize = 20
var defaultWorkers = 4
var defaultTimeout = 1 * time.Minute

var EnvMessage = `If you don't set --config-dir and --config-name on the command line,
this requires the following environment vars:

GCS_STATS_CONFIG_DIR - Path to the directory containing the .env settings file.

GCS_STATS_CONFIG - Name of the configuration to load. For example:
    test - Loads .env.test from GCS_STATS_CONFIG_DIR
    prod - Loads .env.prod from GCS_STATS_CONFIG_DIR

If neither is set, every setting comes from GCS_STATS_* environment
variables, e.g. GCS_STATS_DATASET and GCS_STATS_LOGS_BUCKET.
`

// NewFlagSet returns a flag set for the app called name that parses
// into opts.
func NewFlagSet(name string, opts *Options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.IntVar(&opts.ChannelBufferSize, "bufsize", defaultBufSize, "Channel buffer size for go workers, also NSQ max_in_flight")
	flagSet.StringVar(&opts.ConfigDir, "config-dir", "", "Directory containing the .env.<config-name> settings file")
	flagSet.StringVar(&opts.ConfigName, "config-name", "", "Name of the configuration to load")
	flagSet.IntVar(&opts.MaxAttempts, "max-attempts", defaultAttempts, "Maximum number of deliveries of one notification before giving up")
	flagSet.IntVar(&opts.NumWorkers, "workers", defaultWorkers, "Number of go routines running the pipeline")
	flagSet.StringVar(&opts.ObjectID, "object", "", "Object id of a file in the logs bucket")
	flagSet.StringVar(&opts.PidFile, "pid-file", "", "Refuse to start if the process in this file is running, otherwise write our pid to it")
	flagSet.BoolVarP(&opts.PrintHelp, "help", "h", false, "Print help message")
	flagSet.DurationVar(&opts.RequeueTimeout, "requeue-timeout", defaultTimeout, "Requeue timeout for notifications whose file could not be moved. Format examples: 500ms, 12s, 10m, 3m30s")
	return flagSet
}

// ParseOpts parses args (without the program name) for the app
// called name.
func ParseOpts(name string, args []string) (*Options, error) {
	opts := &Options{}
	flagSet := NewFlagSet(name, opts)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			opts.PrintHelp = true
			return opts, nil
		}
		return nil, err
	}
	if opts.MaxAttempts < 0 || opts.MaxAttempts > 65535 {
		return nil, fmt.Errorf("--max-attempts must be between 0 and 65535")
	}
	return opts, nil
}

// ConfigLocation returns the config dir and name, falling back to
// GCS_STATS_CONFIG_DIR and GCS_STATS_CONFIG for whichever flag is
// not set.
func (opts *Options) ConfigLocation() (string, string) {
	dir := opts.ConfigDir
	if dir == "" {
		dir = os.Getenv(constants.EnvConfigDir)
	}
	name := opts.ConfigName
	if name == "" {
		name = os.Getenv(constants.EnvConfigName)
	}
	return dir, name
}

// PrintUsage writes usage info for the app called name to w.
func PrintUsage(w io.Writer, name, description string) {
	flagSet := NewFlagSet(name, &Options{})
	fmt.Fprintf(w, "%s: %s\n\nFlags:\n%s\n%s", name, description, flagSet.FlagUsages(), EnvMessage)
}
