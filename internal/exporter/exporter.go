package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal"
	"github.com/turbolytics/scribe/internal/catalog"
	"github.com/turbolytics/scribe/internal/flatten"
	"github.com/turbolytics/scribe/internal/mongo"
)

const progressInterval = 10000

// PreserverFactory builds the preserver for one collection artifact. name
// is the artifact name without extension; the factory appends the format
// extension. columns is nil on single pass runs; on two pass runs it
// carries the frozen header computed by the schema pass.
type PreserverFactory func(name string, columns []string) (internal.Preserver, error)

type Option func(*Exporter)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

func WithSource(source *mongo.Source) Option {
	return func(e *Exporter) {
		e.source = source
	}
}

func WithFlattener(flattener *flatten.Flattener) Option {
	return func(e *Exporter) {
		e.flattener = flattener
	}
}

func WithRepository(repository internal.Repository) Option {
	return func(e *Exporter) {
		e.repository = repository
	}
}

func WithPreserverFactory(factory PreserverFactory) Option {
	return func(e *Exporter) {
		e.preservers = factory
	}
}

// WithCollections restricts the run to the named collections. Without it
// every collection in the source database is exported.
func WithCollections(collections []string) Option {
	return func(e *Exporter) {
		e.collections = collections
	}
}

// WithTwoPass trades a second scan of each collection for constant memory:
// the first pass computes the column set, the second streams rows through a
// frozen header.
func WithTwoPass(twoPass bool) Option {
	return func(e *Exporter) {
		e.twoPass = twoPass
	}
}

type Exporter struct {
	logger      *zap.Logger
	source      *mongo.Source
	flattener   *flatten.Flattener
	repository  internal.Repository
	preservers  PreserverFactory
	collections []string
	twoPass     bool
}

func New(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.source == nil {
		return nil, errors.New("exporter: source is required")
	}
	if e.repository == nil {
		return nil, errors.New("exporter: repository is required")
	}
	if e.preservers == nil {
		return nil, errors.New("exporter: preserver factory is required")
	}
	if e.flattener == nil {
		e.flattener = flatten.New(flatten.WithLogger(e.logger))
	}
	return e, nil
}

func (e *Exporter) Close(ctx context.Context) error {
	return e.source.Close(ctx)
}

// Export runs a full export and writes a catalog describing the outcome of
// every requested collection. Only an unreachable source aborts the run;
// any failure scoped to a single collection is recorded in the catalog and
// the run moves on to the next one.
func (e *Exporter) Export(ctx context.Context, runID uuid.UUID) (*catalog.Catalog, error) {
	return e.export(ctx, runID, e.collections, "")
}

// prefix is joined onto every artifact name of the run, on top of whatever
// prefix the repository itself carries.
func (e *Exporter) export(ctx context.Context, runID uuid.UUID, collections []string, prefix string) (*catalog.Catalog, error) {
	if len(collections) == 0 {
		var err error
		collections, err = e.source.Collections(ctx)
		if err != nil {
			return nil, err
		}
	}

	cat := catalog.New(runID.String(), e.source.Database())

	e.logger.Info("starting export",
		zap.String("run_id", runID.String()),
		zap.Strings("collections", collections),
	)

	for i, collection := range collections {
		if err := ctx.Err(); err != nil {
			cat.Add(catalog.Collection{
				Name:   collection,
				Status: catalog.StatusFailed,
				Error:  err.Error(),
			})
			continue
		}

		result, err := e.exportCollection(ctx, collection, path.Join(prefix, collection))
		if err != nil {
			if errors.Is(err, internal.ErrSourceUnavailable) {
				e.logger.Error("source unavailable, aborting run", zap.Error(err))
				for _, remaining := range collections[i:] {
					cat.Add(catalog.Collection{
						Name:   remaining,
						Status: catalog.StatusFailed,
						Error:  err.Error(),
					})
				}
				cat.Finish(false)
				return cat, err
			}

			e.logger.Error("collection export failed",
				zap.String("collection", collection),
				zap.Error(err),
			)
			cat.Add(catalog.Collection{
				Name:   collection,
				Status: catalog.StatusFailed,
				Error:  err.Error(),
			})
			continue
		}

		cat.Add(result)
	}

	cat.Finish(ctx.Err() == nil)

	if err := e.writeCatalog(ctx, cat, prefix); err != nil {
		return cat, err
	}

	e.logger.Info("export complete",
		zap.String("run_id", runID.String()),
		zap.Int("succeeded", cat.Succeeded),
		zap.Int("failed", cat.Failed),
		zap.Int("documents", cat.TotalDocuments),
	)

	return cat, nil
}

func (e *Exporter) exportCollection(ctx context.Context, collection string, name string) (catalog.Collection, error) {
	l := e.logger.With(zap.String("collection", collection))

	var columns []string
	if e.twoPass {
		var err error
		columns, err = e.collectColumns(ctx, collection)
		if err != nil {
			return catalog.Collection{}, err
		}
		l.Debug("schema pass complete", zap.Int("columns", len(columns)))
	}

	snapshot, err := e.source.Snapshot(ctx, collection)
	if err != nil {
		return catalog.Collection{}, err
	}
	defer snapshot.Close(ctx)

	count, err := e.source.Count(ctx, collection)
	if err != nil {
		return catalog.Collection{}, err
	}
	if count == 0 {
		return catalog.Collection{}, fmt.Errorf("%w: %s", internal.ErrCollectionEmpty, collection)
	}

	preserver, err := e.preservers(name, columns)
	if err != nil {
		return catalog.Collection{}, err
	}
	defer preserver.Close(ctx)

	l.Info("exporting collection", zap.Int64("documents", count))

	var processed int
	for {
		record, err := snapshot.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return catalog.Collection{}, err
		}

		flattened, err := e.flattener.Flatten(record.Map())
		if err != nil {
			return catalog.Collection{}, err
		}

		if err := preserver.Preserve(ctx, flattened); err != nil {
			return catalog.Collection{}, err
		}

		processed++
		if processed%progressInterval == 0 {
			l.Info("export progress",
				zap.Int("processed", processed),
				zap.Int64("of", count),
			)
		}
	}

	if err := preserver.Flush(ctx); err != nil {
		return catalog.Collection{}, err
	}

	l.Info("collection exported",
		zap.Int("documents", processed),
		zap.Int64("bytes", preserver.Bytes()),
		zap.String("artifact", preserver.Path()),
	)

	return catalog.Collection{
		Name:      collection,
		Status:    catalog.StatusSucceeded,
		Documents: processed,
		Columns:   len(preserver.Columns()),
		SizeBytes: preserver.Bytes(),
		Artifact:  preserver.Path(),
	}, nil
}

// collectColumns scans the collection once and returns the sorted union of
// every flattened document's columns.
func (e *Exporter) collectColumns(ctx context.Context, collection string) ([]string, error) {
	snapshot, err := e.source.Snapshot(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer snapshot.Close(ctx)

	set := map[string]struct{}{}
	for {
		record, err := snapshot.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		flattened, err := e.flattener.Flatten(record.Map())
		if err != nil {
			return nil, err
		}
		for _, field := range flattened.Fields() {
			set[field] = struct{}{}
		}
	}

	columns := make([]string, 0, len(set))
	for c := range set {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns, nil
}

func (e *Exporter) writeCatalog(ctx context.Context, cat *catalog.Catalog, prefix string) error {
	bs, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return err
	}
	return e.repository.Write(ctx, path.Join(prefix, "catalog.json"), bytes.NewReader(bs))
}
