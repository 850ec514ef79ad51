package main

import (
	"fmt"
	"os"

	"github.com/storagestats/gcs-stats/models/common"
	"github.com/storagestats/gcs-stats/network"
	"github.com/storagestats/gcs-stats/util/cli"
)

const description = `publishes a storage notification for the file named by
--object to the NSQ topic the workers read. Use this to retry a file that was
left in the logs bucket.`

func main() {
	opts, err := cli.ParseOpts("storage_log_queue", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.PrintHelp {
		cli.PrintUsage(os.Stdout, "storage_log_queue", description)
		os.Exit(0)
	}
	if opts.ObjectID == "" {
		cli.PrintUsage(os.Stderr, "storage_log_queue", description)
		os.Exit(2)
	}
	config, err := common.LoadConfig(opts.ConfigLocation())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if config.NsqURL == "" {
		fmt.Fprintln(os.Stderr, "NSQ_URL is not set")
		os.Exit(1)
	}
	client := network.NewNSQClient(config.NsqURL)
	if err := client.EnqueueObject(config.NsqTopic, opts.ObjectID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Queued %s to %s\n", opts.ObjectID, config.NsqTopic)
}
