// Package series holds the columnar time-series container shared by the
// fetchers, the analysis core, and the figure assembly. A Frame is the thin
// stand-in for the dataframe the upstream data providers hand out: aligned
// timestamps plus named float64 columns, NaN in the gaps.
package series

import (
	"fmt"
	"math"
	"time"
)

// Frame is an immutable-length set of columns sharing one timestamp axis.
// Operations that change length (Clip, Resample) return a new Frame.
type Frame struct {
	times   []time.Time
	columns map[string][]float64
	order   []string
}

// New constructs a Frame over the given timestamps. Columns are added with
// AddColumn and must match the timestamp length.
func New(times []time.Time) *Frame {
	return &Frame{
		times:   times,
		columns: make(map[string][]float64),
	}
}

// AddColumn attaches a named column. The length must match the time axis and
// the name must be unused; the alignment invariant is enforced here so the
// numeric core downstream never sees ragged inputs.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.times) {
		return fmt.Errorf("column %q has %d samples, frame has %d timestamps", name, len(values), len(f.times))
	}
	if _, exists := f.columns[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	f.columns[name] = values
	f.order = append(f.order, name)
	return nil
}

// Len returns the number of samples.
func (f *Frame) Len() int { return len(f.times) }

// Times returns the timestamp axis. Callers must not modify it.
func (f *Frame) Times() []time.Time { return f.times }

// Column returns a named column, or nil when absent. Callers must not
// modify it.
func (f *Frame) Column(name string) []float64 { return f.columns[name] }

// ColumnNames returns column names in insertion order.
func (f *Frame) ColumnNames() []string { return f.order }

// Clip returns a new Frame restricted to samples with start <= t < end.
// Column slices are shared with the parent frame.
func (f *Frame) Clip(start, end time.Time) *Frame {
	lo, hi := 0, len(f.times)
	for lo < hi && f.times[lo].Before(start) {
		lo++
	}
	for hi > lo && !f.times[hi-1].Before(end) {
		hi--
	}

	out := New(f.times[lo:hi])
	for _, name := range f.order {
		_ = out.AddColumn(name, f.columns[name][lo:hi])
	}
	return out
}

// MaskWhere replaces samples of column name with NaN wherever pred holds for
// the aligned sample of column flag. The quality-flag filtering the X-ray
// loaders do is expressed through this.
func (f *Frame) MaskWhere(name, flag string, pred func(float64) bool) error {
	values, ok := f.columns[name]
	if !ok {
		return fmt.Errorf("no column %q", name)
	}
	flags, ok := f.columns[flag]
	if !ok {
		return fmt.Errorf("no flag column %q", flag)
	}
	for i, fv := range flags {
		if pred(fv) {
			values[i] = math.NaN()
		}
	}
	return nil
}

// DropColumn removes a column, keeping the order of the rest.
func (f *Frame) DropColumn(name string) {
	if _, ok := f.columns[name]; !ok {
		return
	}
	delete(f.columns, name)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}
