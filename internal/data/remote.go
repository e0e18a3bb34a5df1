package data

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/charmbracelet/datagrid/internal/csync"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Request asks a Loader for rows [First, Last] in the given sort order.
type Request struct {
	First, Last int
	// SortColumn is -1 for the natural order.
	SortColumn int
	Ascending  bool
}

// Loader supplies rows to a Remote model. Methods are called from
// background goroutines.
type Loader interface {
	RowCount(ctx context.Context) (int, error)
	LoadRows(ctx context.Context, req Request) ([][]any, error)
}

// RemoteOptions configure a Remote model.
type RemoteOptions struct {
	// BlockSize is the number of rows loaded per request.
	BlockSize int
	// MaxCachedBlocks bounds the number of blocks kept in memory.
	MaxCachedBlocks int
	// Concurrency bounds the number of parallel block requests.
	Concurrency int
}

const (
	defaultBlockSize       = 50
	defaultMaxCachedBlocks = 20
	defaultConcurrency     = 4
)

type blockKey struct {
	gen, block int
}

type blockResult struct {
	rows [][]any
	err  error
}

type countResult struct {
	n   int
	err error
}

// Remote is a Source that loads rows lazily in blocks through a Loader.
// Loads complete in the background; the owner applies them on the UI
// goroutine by calling ApplyLoaded whenever Ready fires.
type Remote struct {
	Events

	ctx    context.Context
	loader Loader
	opts   RemoteOptions

	columns  []string
	editable []bool
	sortable []bool

	// Owned by the UI goroutine.
	gen        int
	rowCount   int
	countKnown bool
	blocks     map[int][][]any
	lru        []int
	lastErr    error

	sortColumn    int
	sortAscending bool

	results  *csync.Map[blockKey, blockResult]
	counts   *csync.Map[int, countResult]
	inflight *csync.Map[int, int]
	busy     *csync.Value[int]
	group    singleflight.Group
	ready    chan struct{}
}

var _ Source = (*Remote)(nil)

// NewRemote creates a Remote model and starts loading the row count.
// Loading stops when ctx is done.
func NewRemote(ctx context.Context, loader Loader, opts RemoteOptions, columns ...string) *Remote {
	opts.BlockSize = cmp.Or(max(opts.BlockSize, 0), defaultBlockSize)
	opts.MaxCachedBlocks = cmp.Or(max(opts.MaxCachedBlocks, 0), defaultMaxCachedBlocks)
	opts.Concurrency = cmp.Or(max(opts.Concurrency, 0), defaultConcurrency)

	r := &Remote{
		ctx:           ctx,
		loader:        loader,
		opts:          opts,
		columns:       slices.Clone(columns),
		editable:      make([]bool, len(columns)),
		sortable:      make([]bool, len(columns)),
		blocks:        make(map[int][][]any),
		sortColumn:    -1,
		sortAscending: true,
		results:       csync.NewMap[blockKey, blockResult](),
		counts:        csync.NewMap[int, countResult](),
		inflight:      csync.NewMap[int, int](),
		busy:          csync.NewValue(0),
		ready:         make(chan struct{}, 1),
	}
	for i := range r.sortable {
		r.sortable[i] = true
	}
	r.Reload()
	return r
}

// Ready fires when background loads completed and ApplyLoaded has work.
func (r *Remote) Ready() <-chan struct{} {
	return r.ready
}

// Err returns the last load error.
func (r *Remote) Err() error {
	return r.lastErr
}

// Loaded reports whether the row count is known.
func (r *Remote) Loaded() bool {
	return r.countKnown
}

// Busy reports whether loader requests are running.
func (r *Remote) Busy() bool {
	return r.busy.Get() > 0
}

// CachedBlocks returns the number of blocks in memory.
func (r *Remote) CachedBlocks() int {
	return len(r.blocks)
}

// Reload drops all cached rows and reloads the row count.
func (r *Remote) Reload() {
	r.gen++
	clear(r.blocks)
	r.lru = r.lru[:0]
	r.results.Reset()
	r.inflight.Reset()

	gen, loader := r.gen, r.loader
	r.busy.Update(inc)
	go func() {
		defer r.busy.Update(dec)
		n, err := loader.RowCount(r.ctx)
		r.counts.Set(gen, countResult{n: n, err: err})
		r.notify()
	}()
}

func (r *Remote) notify() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// ApplyLoaded moves completed background loads into the model and fires
// the matching change notifications. It reports whether anything changed.
// Call it on the UI goroutine only.
func (r *Remote) ApplyLoaded() bool {
	var changed bool

	for gen, c := range r.counts.Seq2() {
		r.counts.Del(gen)
		if gen != r.gen {
			continue
		}
		if c.err != nil {
			r.lastErr = fmt.Errorf("load row count: %w", c.err)
			slog.Error("Failed to load row count", "err", c.err)
			continue
		}
		r.rowCount = max(c.n, 0)
		r.countKnown = true
		r.lastErr = nil
		changed = true
		r.FireDataChanged(DataChangedEvent{
			FirstRow:    0,
			LastRow:     -1,
			FirstColumn: 0,
			LastColumn:  len(r.columns) - 1,
		})
	}

	var ready []int
	for k, res := range r.results.Seq2() {
		r.results.Del(k)
		if k.gen != r.gen {
			continue
		}
		r.inflight.Del(k.block)
		if res.err != nil {
			r.lastErr = fmt.Errorf("load block %d: %w", k.block, res.err)
			continue
		}
		r.blocks[k.block] = res.rows
		r.touch(k.block)
		ready = append(ready, k.block)
	}
	slices.Sort(ready)
	r.evict()

	for _, b := range ready {
		if _, ok := r.blocks[b]; !ok {
			continue
		}
		first := b * r.opts.BlockSize
		changed = true
		r.FireDataChanged(DataChangedEvent{
			FirstRow:    first,
			LastRow:     min(first+r.opts.BlockSize, r.rowCount) - 1,
			FirstColumn: 0,
			LastColumn:  len(r.columns) - 1,
		})
	}
	return changed
}

func (r *Remote) touch(b int) {
	if i := slices.Index(r.lru, b); i >= 0 {
		r.lru = slices.Delete(r.lru, i, i+1)
	}
	r.lru = append(r.lru, b)
}

func (r *Remote) evict() {
	for len(r.blocks) > r.opts.MaxCachedBlocks && len(r.lru) > 0 {
		b := r.lru[0]
		r.lru = r.lru[1:]
		delete(r.blocks, b)
	}
}

// PrefetchRows implements Source. Missing blocks covering [first, last]
// are loaded in the background.
func (r *Remote) PrefetchRows(first, last int) {
	if !r.countKnown || r.rowCount == 0 {
		return
	}
	first = max(first, 0)
	last = min(last, r.rowCount-1)
	if first > last {
		return
	}

	var missing []int
	for b := first / r.opts.BlockSize; b <= last/r.opts.BlockSize; b++ {
		if _, ok := r.blocks[b]; ok {
			r.touch(b)
			continue
		}
		if gen, ok := r.inflight.Get(b); ok && gen == r.gen {
			continue
		}
		r.inflight.Set(b, r.gen)
		missing = append(missing, b)
	}
	if len(missing) == 0 {
		return
	}
	r.busy.Update(inc)
	go r.load(r.gen, r.sortColumn, r.sortAscending, missing)
}

func inc(n int) int { return n + 1 }
func dec(n int) int { return n - 1 }

func (r *Remote) load(gen, sortColumn int, ascending bool, blocks []int) {
	defer r.busy.Update(dec)
	g, ctx := errgroup.WithContext(r.ctx)
	g.SetLimit(r.opts.Concurrency)

	for _, b := range blocks {
		g.Go(func() error {
			first := b * r.opts.BlockSize
			req := Request{
				First:      first,
				Last:       first + r.opts.BlockSize - 1,
				SortColumn: sortColumn,
				Ascending:  ascending,
			}
			key := fmt.Sprintf("%d/%d", gen, b)
			v, err, _ := r.group.Do(key, func() (any, error) {
				return r.loader.LoadRows(ctx, req)
			})
			rows, _ := v.([][]any)
			r.results.Set(blockKey{gen, b}, blockResult{rows: rows, err: err})
			r.notify()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Failed to load rows", "blocks", len(blocks), "err", err)
	}
}

func (r *Remote) row(row int) ([]any, bool) {
	if row < 0 || row >= r.rowCount {
		return nil, false
	}
	rows, ok := r.blocks[row/r.opts.BlockSize]
	if !ok {
		return nil, false
	}
	i := row % r.opts.BlockSize
	if i >= len(rows) {
		return nil, false
	}
	return rows[i], true
}

// RowCount implements Source. It is 0 until the count was loaded.
func (r *Remote) RowCount() int { return r.rowCount }

// ColumnCount implements Source.
func (r *Remote) ColumnCount() int { return len(r.columns) }

// ColumnName implements Source.
func (r *Remote) ColumnName(col int) string {
	if col < 0 || col >= len(r.columns) {
		return ""
	}
	return r.columns[col]
}

// Value implements Source. Unloaded cells are nil.
func (r *Remote) Value(col, row int) any {
	data, ok := r.row(row)
	if !ok {
		return nil
	}
	return cell(data, col)
}

// SetValue implements Source. Only loaded rows can be changed; the change
// is kept in memory until the block is evicted or reloaded.
func (r *Remote) SetValue(col, row int, value any) error {
	data, ok := r.row(row)
	if !ok {
		return fmt.Errorf("set value at column %d, row %d: %w", col, row, ErrNotLoaded)
	}
	if col < 0 || col >= len(data) {
		return fmt.Errorf("set value at column %d, row %d: %w", col, row, ErrOutOfRange)
	}
	if equalValues(data[col], value) {
		return nil
	}
	data[col] = value
	r.FireDataChanged(DataChangedEvent{FirstRow: row, LastRow: row, FirstColumn: col, LastColumn: col})
	return nil
}

// RowData implements Source.
func (r *Remote) RowData(row int) (any, bool) {
	data, ok := r.row(row)
	if !ok {
		return nil, false
	}
	return data, true
}

// SetColumnEditable sets whether cells of col may be edited.
func (r *Remote) SetColumnEditable(col int, editable bool) {
	if col < 0 || col >= len(r.editable) {
		return
	}
	r.editable[col] = editable
	r.FireMetaDataChanged()
}

// SetEditable sets the editable flag of every column.
func (r *Remote) SetEditable(editable bool) {
	for i := range r.editable {
		r.editable[i] = editable
	}
	r.FireMetaDataChanged()
}

// SetColumnSortable sets whether col may be sorted.
func (r *Remote) SetColumnSortable(col int, sortable bool) {
	if col < 0 || col >= len(r.sortable) {
		return
	}
	r.sortable[col] = sortable
	r.FireMetaDataChanged()
}

// IsColumnEditable implements Source.
func (r *Remote) IsColumnEditable(col int) bool {
	return col >= 0 && col < len(r.editable) && r.editable[col]
}

// IsColumnSortable implements Source.
func (r *Remote) IsColumnSortable(col int) bool {
	return col >= 0 && col < len(r.sortable) && r.sortable[col]
}

// SortByColumn implements Source. Sorting is delegated to the loader, so
// all cached rows are dropped.
func (r *Remote) SortByColumn(col int, ascending bool) {
	r.sortColumn = col
	r.sortAscending = ascending
	r.Reload()
	r.FireSorted(SortedEvent{Column: col, Ascending: ascending})
	r.FireMetaDataChanged()
}

// SortColumnIndex implements Source.
func (r *Remote) SortColumnIndex() int { return r.sortColumn }

// IsSortAscending implements Source.
func (r *Remote) IsSortAscending() bool { return r.sortAscending }
