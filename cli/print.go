package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/larrabee/s3publish/pipeline"
)

func printLiveStats(ctx context.Context, syncGroup *pipeline.Group) {
	startTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
			dur := time.Since(startTime).Seconds()
			for _, val := range syncGroup.GetStepsInfo() {
				_, _ = fmt.Fprintf(live, "%d %s: Input: %d; Output: %d (%.f obj/sec); Errors: %d\n",
					val.Num, val.Name, val.Stats.Input, val.Stats.Output, float64(val.Stats.Output)/dur, val.Stats.Error)
			}
			stats := syncGroup.Stats()
			_, _ = fmt.Fprintf(live, "Uploaded: %d; Skipped: %d; Dropped: %d; Duration: %s\n",
				stats.Uploaded, stats.Skipped, stats.Dropped, time.Since(startTime).Round(time.Second))
			time.Sleep(time.Second)
		}
	}
}

func printFinalStats(syncGroup *pipeline.Group, stats pipeline.RunStats, status syncStatus) {
	for _, val := range syncGroup.GetStepsInfo() {
		log.Debugf("%d %s: Input: %d; Output: %d; Errors: %d", val.Num, val.Name, val.Stats.Input, val.Stats.Output, val.Stats.Error)
	}
	log.Infof("%s files uploaded.", humanize.Comma(int64(stats.Uploaded)))
	log.Infof("%s files skipped.", humanize.Comma(int64(stats.Skipped)))
	if stats.Dropped > 0 {
		log.Warnf("%s files dropped.", humanize.Comma(int64(stats.Dropped)))
	}
	log.Infof("Duration: %s", time.Since(syncGroup.StartTime).String())

	switch status {
	case syncStatusOk:
		log.Infof("Sync Done")
	case syncStatusFailed:
		log.Error("Sync Failed")
	case syncStatusAborted:
		log.Warnf("Sync Aborted")
	case syncStatusConfError:
		log.Errorf("Sync Configuration error")
	default:
		log.Warnf("Sync Unknown status")
	}
}
