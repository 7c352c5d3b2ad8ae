package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal"
	"github.com/turbolytics/scribe/internal/flatten"
)

type Option func(*Preserver)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = logger
	}
}

func WithRepository(repository internal.Repository) Option {
	return func(p *Preserver) {
		p.repository = repository
	}
}

func WithPath(path string) Option {
	return func(p *Preserver) {
		p.path = path
	}
}

// WithColumns freezes the header up front. With a frozen header the
// preserver streams rows straight through to the repository instead of
// buffering them; values in columns outside the header are dropped with a
// warning.
func WithColumns(columns []string) Option {
	return func(p *Preserver) {
		if len(columns) == 0 {
			return
		}
		p.frozen = append([]string(nil), columns...)
		p.frozenSet = make(map[string]struct{}, len(columns))
		for _, c := range columns {
			p.frozenSet[c] = struct{}{}
		}
	}
}

// Preserver builds one CSV export artifact. Without a frozen header it
// buffers rows and grows the column superset until Flush, which emits the
// sorted superset as the header followed by every row. Fields missing from
// a row render empty.
type Preserver struct {
	logger     *zap.Logger
	repository internal.Repository
	path       string

	columns map[string]struct{}
	rows    []map[string]any

	frozen    []string
	frozenSet map[string]struct{}

	order    []string
	w        *csv.Writer
	pw       *io.PipeWriter
	counter  *countingWriter
	writeErr chan error
	done     bool
}

func New(opts ...Option) (*Preserver, error) {
	p := &Preserver{
		logger:  zap.NewNop(),
		columns: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.repository == nil {
		return nil, errors.New("csv: repository is required")
	}
	if p.path == "" {
		return nil, errors.New("csv: path is required")
	}
	return p, nil
}

func (p *Preserver) Path() string {
	return p.path
}

func (p *Preserver) Columns() []string {
	if p.frozen != nil {
		return p.frozen
	}
	columns := make([]string, 0, len(p.columns))
	for c := range p.columns {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

// Bytes reports the size of the emitted artifact.
func (p *Preserver) Bytes() int64 {
	if p.counter == nil {
		return 0
	}
	return p.counter.n
}

func (p *Preserver) Preserve(ctx context.Context, record *internal.Record) error {
	if p.frozen == nil {
		for _, field := range record.Fields() {
			p.columns[field] = struct{}{}
		}
		p.rows = append(p.rows, record.Map())
		return nil
	}

	if p.w == nil {
		if err := p.start(ctx); err != nil {
			return err
		}
	}

	for _, field := range record.Fields() {
		if _, ok := p.frozenSet[field]; !ok {
			p.logger.Warn("column not in frozen header, dropping value",
				zap.String("column", field),
				zap.String("path", p.path),
			)
		}
	}

	if err := p.writeRow(record.Map()); err != nil {
		return p.abort(err)
	}
	return nil
}

func (p *Preserver) Flush(ctx context.Context) error {
	if p.w == nil {
		if err := p.start(ctx); err != nil {
			return err
		}
	}

	for _, row := range p.rows {
		if err := p.writeRow(row); err != nil {
			return p.abort(err)
		}
	}
	p.rows = nil

	p.w.Flush()
	if err := p.w.Error(); err != nil {
		return p.abort(err)
	}

	p.logger.Debug("flushed artifact",
		zap.String("path", p.path),
		zap.Int("columns", len(p.order)),
		zap.Int64("bytes", p.counter.n),
	)

	p.pw.Close()
	err := <-p.writeErr
	p.done = true
	return err
}

// Close discards the artifact if Flush has not completed. Safe to defer.
func (p *Preserver) Close(ctx context.Context) error {
	if p.done || p.w == nil {
		p.rows = nil
		return nil
	}
	return p.abort(errors.New("csv: preserver closed before flush"))
}

// start opens the pipe to the repository and writes the header row.
func (p *Preserver) start(ctx context.Context) error {
	p.order = p.Columns()

	pr, pw := io.Pipe()
	p.pw = pw
	p.counter = &countingWriter{w: pw}
	p.w = csv.NewWriter(p.counter)
	p.writeErr = make(chan error, 1)

	go func() {
		err := p.repository.Write(ctx, p.path, pr)
		pr.CloseWithError(err)
		p.writeErr <- err
	}()

	if err := p.w.Write(p.order); err != nil {
		return p.abort(err)
	}
	return nil
}

func (p *Preserver) writeRow(row map[string]any) error {
	out := make([]string, len(p.order))
	for i, column := range p.order {
		out[i] = flatten.Render(row[column])
	}
	return p.w.Write(out)
}

// abort tears the pipe down and surfaces the most specific error available.
func (p *Preserver) abort(err error) error {
	p.done = true
	p.pw.CloseWithError(err)
	if werr := <-p.writeErr; werr != nil {
		return werr
	}
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
