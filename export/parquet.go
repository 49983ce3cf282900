// Package export writes assembled time-series frames to parquet for
// offline analysis.
package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/signalsfoundry/helioplot/series"
)

// Row is the long-format parquet record: one sample of one named series.
// NaN gap samples are not written.
type Row struct {
	UnixMs int64   `parquet:"unix_ms"`
	Series string  `parquet:"series,dict"`
	Value  float64 `parquet:"value"`
}

// WriteFrame writes every column of the frame to w in long format.
func WriteFrame(w io.Writer, f *series.Frame) error {
	pw := parquet.NewGenericWriter[Row](w)

	times := f.Times()
	buf := make([]Row, 0, 1024)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if _, err := pw.Write(buf); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
		buf = buf[:0]
		return nil
	}

	for _, name := range f.ColumnNames() {
		col := f.Column(name)
		for i, v := range col {
			if math.IsNaN(v) {
				continue
			}
			buf = append(buf, Row{
				UnixMs: times[i].UnixMilli(),
				Series: name,
				Value:  v,
			})
			if len(buf) == cap(buf) {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// WriteFrameFile writes the frame to a parquet file at path.
func WriteFrameFile(path string, f *series.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteFrame(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
