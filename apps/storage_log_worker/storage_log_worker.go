package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/storagestats/gcs-stats/models/common"
	"github.com/storagestats/gcs-stats/util"
	"github.com/storagestats/gcs-stats/util/cli"
	"github.com/storagestats/gcs-stats/workers"
)

const description = `runs as a service. It reads storage notifications from NSQ,
records the storage numbers in each new storage log in BigQuery, and moves
each log file to the processed, errors or usage bucket.`

func main() {
	os.Exit(start())
}

func start() int {
	opts, err := cli.ParseOpts("storage_log_worker", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.PrintHelp {
		cli.PrintUsage(os.Stdout, "storage_log_worker", description)
		return 0
	}
	if opts.PidFile != "" {
		if err := util.ClaimPidFile(opts.PidFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer util.DeletePidFile(opts.PidFile)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func run(opts *cli.Options) error {
	config, err := common.LoadConfig(opts.ConfigLocation())
	if err != nil {
		return err
	}
	_context, err := common.NewContextWithConfig(context.Background(), config)
	if err != nil {
		return err
	}
	defer _context.Close()
	_context.Logger.Infof("Config: %s", config.ToJSON())

	settings := workers.DefaultSettings(config)
	settings.ChannelBufferSize = opts.ChannelBufferSize
	settings.MaxAttempts = uint16(opts.MaxAttempts)
	settings.NumberOfWorkers = opts.NumWorkers
	settings.RequeueTimeout = opts.RequeueTimeout
	if err := settings.Validate(); err != nil {
		return err
	}
	_context.Logger.Infof("Settings: %s", settings.ToJSON())

	worker := workers.NewLogFileWorkerFromContext(_context, settings)
	if err := worker.RegisterAsNsqConsumer(config.NsqLookupd); err != nil {
		worker.Stop()
		return err
	}

	// Block until we get an interrupt, or until the consumer stops
	// on its own.
	killChannel := make(chan os.Signal, 1)
	signal.Notify(killChannel, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-killChannel:
		_context.Logger.Warningf("Received %s. Starting graceful shutdown.", sig)
	case <-worker.NSQConsumer.StopChan:
		_context.Logger.Warning("NSQ consumer stopped.")
	}
	worker.Stop()
	return nil
}
