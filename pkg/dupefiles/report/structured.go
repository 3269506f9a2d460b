package report

import (
	"encoding/json"
	"io"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"gopkg.in/yaml.v3"
)

// pairDoc is one pair in JSON and YAML output.
type pairDoc struct {
	PathA      string `json:"path_a" yaml:"path_a"`
	SizeA      int64  `json:"size_a" yaml:"size_a"`
	SizeAHuman string `json:"size_a_human" yaml:"size_a_human"`
	PathB      string `json:"path_b" yaml:"path_b"`
	SizeB      int64  `json:"size_b" yaml:"size_b"`
	SizeBHuman string `json:"size_b_human" yaml:"size_b_human"`
}

// reportDoc is the full JSON and YAML document.
type reportDoc struct {
	Count int       `json:"count" yaml:"count"`
	Pairs []pairDoc `json:"pairs" yaml:"pairs"`
}

// documentSink buffers pairs and encodes one document on Finish.
type documentSink struct {
	w      io.Writer
	doc    reportDoc
	encode func(w io.Writer, doc *reportDoc) error
}

func (s *documentSink) Report(pair types.DuplicatePair) error {
	s.doc.Pairs = append(s.doc.Pairs, pairDoc{
		PathA:      pair.PathA,
		SizeA:      pair.SizeA,
		SizeAHuman: types.FormatSize(pair.SizeA),
		PathB:      pair.PathB,
		SizeB:      pair.SizeB,
		SizeBHuman: types.FormatSize(pair.SizeB),
	})
	return nil
}

func (s *documentSink) Finish() error {
	s.doc.Count = len(s.doc.Pairs)
	if s.doc.Pairs == nil {
		s.doc.Pairs = []pairDoc{}
	}
	return s.encode(s.w, &s.doc)
}

// NewJSONSink creates a sink that writes an indented JSON document on Finish.
func NewJSONSink(w io.Writer) Sink {
	return &documentSink{
		w: w,
		encode: func(w io.Writer, doc *reportDoc) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(doc)
		},
	}
}

// NewYAMLSink creates a sink that writes a YAML document on Finish.
func NewYAMLSink(w io.Writer) Sink {
	return &documentSink{
		w: w,
		encode: func(w io.Writer, doc *reportDoc) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func init() {
	Register("json", NewJSONSink)
	Register("yaml", NewYAMLSink)
}
