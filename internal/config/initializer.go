package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal"
	"github.com/turbolytics/scribe/internal/csv"
	"github.com/turbolytics/scribe/internal/exporter"
	"github.com/turbolytics/scribe/internal/flatten"
	"github.com/turbolytics/scribe/internal/gcs"
	"github.com/turbolytics/scribe/internal/local"
	"github.com/turbolytics/scribe/internal/mongo"
	"github.com/turbolytics/scribe/internal/parquet"
	"github.com/turbolytics/scribe/internal/s3"
	"github.com/turbolytics/scribe/internal/stdout"
)

// InitializeExporter wires an exporter from config: source, repository,
// flattener and preserver factory. The caller owns the exporter and must
// Close it.
func InitializeExporter(ctx context.Context, scribe *Scribe, logger *zap.Logger) (*exporter.Exporter, error) {
	sourceOpts := []mongo.SourceOption{
		mongo.WithLogger(logger),
	}
	if scribe.Exporter.Source.BatchSize > 0 {
		sourceOpts = append(sourceOpts, mongo.WithBatchSize(scribe.Exporter.Source.BatchSize))
	}
	if scribe.Exporter.Source.Limit > 0 {
		sourceOpts = append(sourceOpts, mongo.WithLimit(scribe.Exporter.Source.Limit))
	}

	source, err := mongo.NewSource(
		ctx,
		scribe.Exporter.Source.URI,
		scribe.Exporter.Source.Database,
		sourceOpts...,
	)
	if err != nil {
		return nil, err
	}

	repository, err := initializeRepository(ctx, scribe, logger)
	if err != nil {
		return nil, err
	}

	flattenerOpts := []flatten.Option{
		flatten.WithLogger(logger),
	}
	if scribe.Exporter.Transform.MaxDepth > 0 {
		flattenerOpts = append(flattenerOpts, flatten.WithMaxDepth(scribe.Exporter.Transform.MaxDepth))
	}

	factory, err := initializePreserverFactory(scribe, repository, logger)
	if err != nil {
		return nil, err
	}

	return exporter.New(
		exporter.WithLogger(logger),
		exporter.WithSource(source),
		exporter.WithRepository(repository),
		exporter.WithFlattener(flatten.New(flattenerOpts...)),
		exporter.WithPreserverFactory(factory),
		exporter.WithCollections(scribe.Exporter.Source.Collections),
		exporter.WithTwoPass(scribe.Exporter.Preserver.TwoPass),
	)
}

func initializeRepository(ctx context.Context, scribe *Scribe, logger *zap.Logger) (internal.Repository, error) {
	switch scribe.Exporter.Repository.Type {
	case "", "local":
		return local.New(
			scribe.Exporter.Repository.Local.Path,
			local.WithLogger(logger),
		), nil
	case "s3":
		return s3.New(
			s3.WithLogger(logger),
			s3.WithRegion(scribe.Exporter.Repository.S3.Region),
			s3.WithBucket(scribe.Exporter.Repository.S3.Bucket),
			s3.WithPrefix(scribe.Exporter.Repository.S3.Prefix),
			s3.WithEndpoint(scribe.Exporter.Repository.S3.Endpoint),
			s3.WithForcePathStyle(scribe.Exporter.Repository.S3.ForcePathStyle),
		)
	case "gcs":
		return gcs.New(
			ctx,
			gcs.WithLogger(logger),
			gcs.WithBucket(scribe.Exporter.Repository.GCS.Bucket),
			gcs.WithPrefix(scribe.Exporter.Repository.GCS.Prefix),
			gcs.WithCredentialsFile(scribe.Exporter.Repository.GCS.CredentialsFile),
		)
	case "stdout":
		return stdout.New(), nil
	default:
		return nil, fmt.Errorf("unknown repository type: %q", scribe.Exporter.Repository.Type)
	}
}

func initializePreserverFactory(scribe *Scribe, repository internal.Repository, logger *zap.Logger) (exporter.PreserverFactory, error) {
	switch scribe.Exporter.Preserver.Type {
	case "", "csv":
		return func(name string, columns []string) (internal.Preserver, error) {
			return csv.New(
				csv.WithLogger(logger),
				csv.WithRepository(repository),
				csv.WithPath(name+".csv"),
				csv.WithColumns(columns),
			)
		}, nil
	case "parquet":
		return func(name string, columns []string) (internal.Preserver, error) {
			return parquet.New(
				parquet.WithLogger(logger),
				parquet.WithRepository(repository),
				parquet.WithPath(name+".parquet"),
				parquet.WithColumns(columns),
			)
		}, nil
	default:
		return nil, fmt.Errorf("unknown preserver type: %q", scribe.Exporter.Preserver.Type)
	}
}
