package series

import (
	"math"
	"time"
)

// Resample aggregates the frame into fixed buckets of the given width using
// the NaN-skipping mean per column. Bucket timestamps are the bucket starts,
// aligned to multiples of the width since the Unix epoch; buckets with no
// finite samples yield NaN. A non-positive width returns the frame unchanged.
func (f *Frame) Resample(width time.Duration) *Frame {
	if width <= 0 || f.Len() == 0 {
		return f
	}

	// Scan for the span instead of trusting endpoint order; frames built
	// from hand-edited CSVs can carry out-of-order rows.
	first, last := f.times[0], f.times[0]
	for _, t := range f.times[1:] {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	first = first.Truncate(width)
	last = last.Truncate(width)
	buckets := int(last.Sub(first)/width) + 1

	times := make([]time.Time, buckets)
	for i := range times {
		times[i] = first.Add(time.Duration(i) * width)
	}

	out := New(times)
	for _, name := range f.order {
		src := f.columns[name]
		sums := make([]float64, buckets)
		counts := make([]int, buckets)
		for i, t := range f.times {
			v := src[i]
			if math.IsNaN(v) {
				continue
			}
			b := int(t.Truncate(width).Sub(first) / width)
			sums[b] += v
			counts[b]++
		}

		means := make([]float64, buckets)
		for b := range means {
			if counts[b] == 0 {
				means[b] = math.NaN()
				continue
			}
			means[b] = sums[b] / float64(counts[b])
		}
		_ = out.AddColumn(name, means)
	}
	return out
}
