package report

import (
	"fmt"
	"io"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
)

// CSVHeader is the header line written before the first pair.
const CSVHeader = "DUPE1.NAME,DUPE1.SIZE,DUPE1.HRSIZE,DUPE2.NAME,DUPE2.SIZE,DUPE2.HRSIZE"

// CSVSink streams one line per pair. The header is written lazily on the
// first pair; a scan with no pairs produces only NoDuplicatesMessage.
type CSVSink struct {
	w             io.Writer
	headerWritten bool
	count         int
}

// NewCSVSink creates a CSVSink writing to w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: w}
}

// Report writes the header if needed, then the pair's line.
func (s *CSVSink) Report(pair types.DuplicatePair) error {
	if !s.headerWritten {
		if _, err := fmt.Fprintln(s.w, CSVHeader); err != nil {
			return err
		}
		s.headerWritten = true
	}
	if _, err := fmt.Fprintln(s.w, FormatCSVLine(pair)); err != nil {
		return err
	}
	s.count++
	return nil
}

// Finish writes NoDuplicatesMessage when no pair was reported.
func (s *CSVSink) Finish() error {
	if s.count > 0 {
		return nil
	}
	_, err := fmt.Fprintln(s.w, NoDuplicatesMessage)
	return err
}

// FormatCSVLine renders a pair as
// "<path1>",<size1>,"<human1>","<path2>",<size2>,"<human2>".
// Paths are written verbatim between the quotes.
func FormatCSVLine(pair types.DuplicatePair) string {
	return fmt.Sprintf(`"%s",%d,"%s","%s",%d,"%s"`,
		pair.PathA, pair.SizeA, types.FormatSize(pair.SizeA),
		pair.PathB, pair.SizeB, types.FormatSize(pair.SizeB))
}

func init() {
	Register("csv", func(w io.Writer) Sink {
		return NewCSVSink(w)
	})
}

// Ensure CSVSink implements Sink.
var _ Sink = (*CSVSink)(nil)
