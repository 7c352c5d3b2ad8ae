package flatten

import (
	"sort"

	"github.com/nqd/flat"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal"
)

// DefaultMaxDepth is the number of nested mapping levels expanded into
// joined columns. Mappings nested deeper are kept whole and rendered as
// JSON.
const DefaultMaxDepth = 3

type Option func(*Flattener)

func WithMaxDepth(depth int) Option {
	return func(f *Flattener) {
		f.maxDepth = depth
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Flattener) {
		f.logger = logger
	}
}

// Flattener converts one nested document into a flat column -> value
// record. Nested mappings join their key paths with "_"; arrays are kept
// whole. A maxDepth of 0 means no depth limit.
type Flattener struct {
	maxDepth int
	logger   *zap.Logger
}

func New(opts ...Option) *Flattener {
	f := &Flattener{
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flattener) Flatten(doc map[string]any) (*internal.Record, error) {
	m, ok := normalize(doc).(map[string]any)
	if !ok || len(m) == 0 {
		return internal.NewRecord(nil, nil), nil
	}

	flattened, err := flat.Flatten(m, &flat.Options{
		Delimiter: "_",
		Safe:      true,
		MaxDepth:  f.maxDepth,
	})
	if err != nil {
		return nil, err
	}

	// Two distinct paths can join to the same column name ("a_b" next to
	// {"a": {"b": ...}}). The merge keeps a single value; every collision
	// is signaled.
	for _, column := range duplicates(leafColumns(nil, "", 0, m, f.maxDepth)) {
		f.logger.Warn("column collision after flattening, keeping one value",
			zap.String("column", column),
		)
	}

	return internal.NewRecordFromMap(flattened), nil
}

// leafColumns enumerates the columns flattening produces for a document,
// under the same rules the flatten options select: "_" joined key paths,
// arrays kept whole, mappings beyond maxDepth kept whole.
func leafColumns(columns []string, prefix string, depth int, v any, maxDepth int) []string {
	m, ok := v.(map[string]any)
	if !ok {
		return append(columns, prefix)
	}
	if maxDepth != 0 && depth >= maxDepth {
		return append(columns, prefix)
	}
	if len(m) == 0 {
		return append(columns, prefix)
	}
	for k, child := range m {
		column := k
		if prefix != "" {
			column = prefix + "_" + k
		}
		columns = leafColumns(columns, column, depth+1, child, maxDepth)
	}
	return columns
}

func duplicates(columns []string) []string {
	seen := make(map[string]int, len(columns))
	for _, c := range columns {
		seen[c]++
	}

	var dupes []string
	for c, n := range seen {
		if n > 1 {
			dupes = append(dupes, c)
		}
	}
	sort.Strings(dupes)
	return dupes
}
