package main

import (
	"context"
	"fmt"
	"os"

	"github.com/storagestats/gcs-stats/ingest"
	"github.com/storagestats/gcs-stats/models/common"
	"github.com/storagestats/gcs-stats/util/cli"
)

const description = `runs the pipeline once for the file named by --object,
without going through NSQ. It prints the outcome as JSON and exits non-zero
if the file could not be moved out of the logs bucket.`

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := cli.ParseOpts("storage_log_process", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.PrintHelp {
		cli.PrintUsage(os.Stdout, "storage_log_process", description)
		return 0
	}
	if opts.ObjectID == "" {
		cli.PrintUsage(os.Stderr, "storage_log_process", description)
		return 2
	}

	config, err := common.LoadConfig(opts.ConfigLocation())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	_context, err := common.NewContextWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer _context.Close()

	outcome, runErr := ingest.NewProcessorFromContext(_context).Run(context.Background(), opts.ObjectID)
	if outcomeJSON, err := outcome.ToJSON(); err == nil {
		fmt.Println(outcomeJSON)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		return 1
	}
	return 0
}
