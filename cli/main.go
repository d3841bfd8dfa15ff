// Package provides the cli util s3publish.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/gosuri/uilive"
	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()
var live *uilive.Writer

type syncStatus int

const (
	syncStatusUnknown syncStatus = iota - 1
	syncStatusOk
	syncStatusFailed
	syncStatusAborted
	syncStatusConfError
)

// configureLogging set logger level and output and share the logger with library packages.
func configureLogging(cli *argsParsed) {
	if cli.ShowProgress {
		live = uilive.New()
		live.Start()
		log.SetOutput(live.Bypass())
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}
	if cli.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	pipeline.Log = log
	storage.Log = log
}

func main() {
	cli, err := GetCliArgs()
	if err != nil {
		log.Errorf("Configuration error: %s", err)
		log.Exit(int(syncStatusConfError))
	}
	configureLogging(&cli)

	ctx, cancel := context.WithCancel(context.Background())
	var aborted atomic.Bool
	sysStopChan := make(chan os.Signal, 1)
	signal.Notify(sysStopChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		recSignal := <-sysStopChan
		log.Warnf("Receive signal: %s, terminating", recSignal.String())
		aborted.Store(true)
		cancel()
	}()

	if _, err := os.Stat(cli.Source); err != nil {
		log.Errorf("Source dir %s is not available: %s. Please generate the site first", cli.Source, err)
		log.Exit(int(syncStatusFailed))
	}

	syncGroup := pipeline.NewGroup()
	if err := setupStorages(ctx, &syncGroup, &cli); err != nil {
		log.Errorf("Failed to setup storage, error: %s", err)
		log.Exit(int(syncStatusConfError))
	}
	if err := setupPipeline(&syncGroup, &cli); err != nil {
		log.Errorf("Failed to setup pipeline, error: %s", err)
		log.Exit(int(syncStatusConfError))
	}
	syncGroup.SetErrHandler(handleObjectError)

	if cli.ShowProgress {
		go printLiveStats(ctx, &syncGroup)
	}

	log.Infof("Starting sync to bucket %s", cli.Target.Bucket)
	stats, err := syncGroup.Run()
	status := runStatus(err, aborted.Load())
	if status == syncStatusFailed {
		log.Errorf("Sync error: %s, terminating", err)
	}
	cancel()
	if live != nil {
		live.Stop()
	}

	printFinalStats(&syncGroup, stats, status)
	log.Exit(int(status))
}

func runStatus(err error, aborted bool) syncStatus {
	if err == nil {
		return syncStatusOk
	}
	if aborted || storage.IsAwsContextCanceled(err) {
		return syncStatusAborted
	}
	var confErr *pipeline.StepConfigurationError
	if errors.As(err, &confErr) {
		return syncStatusConfError
	}
	return syncStatusFailed
}
