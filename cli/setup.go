package main

import (
	"context"
	"fmt"
	"os"

	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/pipeline/collection"
	"github.com/larrabee/s3publish/storage"
	"github.com/larrabee/s3publish/storage/fs"
	"github.com/larrabee/s3publish/storage/s3"
	"github.com/sirupsen/logrus"
)

func setupStorages(ctx context.Context, syncGroup *pipeline.Group, cli *argsParsed) error {
	sourceStorage := fs.NewFSStorage(cli.Source, os.Getpagesize()*256*32, cli.FilterNames)

	var targetStorage storage.Target
	switch cli.Target.Type {
	case storage.TypeS3:
		targetStorage = s3.NewS3Storage(cli.AccessKey, cli.SecretKey, cli.Region, cli.Endpoint, cli.Target.Bucket)
	}
	if targetStorage == nil {
		return fmt.Errorf("target storage is nil")
	}

	if cli.RateLimitBandwidth > 0 {
		if err := targetStorage.WithRateLimit(cli.RateLimitBandwidth); err != nil {
			return fmt.Errorf("bandwidth limit error: %w", err)
		}
	}

	syncGroup.WithContext(ctx)
	syncGroup.SetSource(sourceStorage)
	syncGroup.SetTarget(targetStorage)
	return nil
}

func setupPipeline(syncGroup *pipeline.Group, cli *argsParsed) error {
	syncGroup.AddPipeStep(pipeline.Step{
		Name: "LoadObjMeta",
		Fn:   collection.LoadObjectMeta,
	})

	if cli.CheckModifiedTime && !cli.Force {
		syncGroup.AddPipeStep(pipeline.Step{
			Name: "FilterObjectsModified",
			Fn:   collection.FilterObjectsModified,
		})
	}

	syncGroup.AddPipeStep(pipeline.Step{
		Name: "LoadObjData",
		Fn:   collection.LoadObjectData,
	})

	syncGroup.AddPipeStep(pipeline.Step{
		Name: "DetectContentType",
		Fn:   collection.DetectContentType,
	})

	if cli.Gzip {
		syncGroup.AddPipeStep(pipeline.Step{
			Name:  "GzipCompressor",
			Fn:    collection.GzipCompressor,
			Check: pipeline.ConfigIs[collection.GzipConfig](),
			Config: collection.GzipConfig{
				MinSize:      collection.DefaultGzipMinSize,
				ContentTypes: collection.DefaultGzipContentTypes,
			},
		})
	}

	if cli.Expires {
		syncGroup.AddPipeStep(pipeline.Step{
			Name:  "ExpiresUpdater",
			Fn:    collection.ExpiresUpdater,
			Check: pipeline.ConfigIs[collection.ExpiresConfig](),
			Config: collection.ExpiresConfig{
				LongContentTypes: collection.DefaultLongExpiryContentTypes,
				LongDays:         collection.LongExpiryDays,
				ShortDays:        collection.ShortExpiryDays,
			},
		})
	}

	if cli.S3Acl != "" {
		syncGroup.AddPipeStep(pipeline.Step{
			Name:   "ACLUpdater",
			Fn:     collection.ACLUpdater,
			Check:  pipeline.ConfigIs[string](),
			Config: cli.S3Acl,
		})
	}

	if cli.RateLimitObjPerSec > 0 {
		rateLimit, err := collection.NewRateLimit(cli.RateLimitObjPerSec)
		if err != nil {
			return fmt.Errorf("objects rate limit error: %w", err)
		}
		syncGroup.AddPipeStep(pipeline.Step{
			Name:   "RateLimit",
			Fn:     rateLimit,
			Config: cli.RateLimitObjPerSec,
		})
	}

	syncGroup.AddPipeStep(pipeline.Step{
		Name: "UploadObj",
		Fn:   collection.UploadObjectData,
	})

	if cli.SyncLog {
		syncGroup.AddPipeStep(pipeline.Step{
			Name:   "Logger",
			Fn:     collection.Logger,
			Check:  pipeline.ConfigIs[*logrus.Logger](),
			Config: log,
		})
	}
	return nil
}
