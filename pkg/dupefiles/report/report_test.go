package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jamesainslie/dupefiles/pkg/dupefiles/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var samplePair = types.DuplicatePair{
	PathA: "/data/x.txt",
	SizeA: 5,
	PathB: "/data/y.txt",
	SizeB: 5,
}

func TestFormatCSVLine(t *testing.T) {
	assert.Equal(t,
		`"/data/x.txt",5,"5 B","/data/y.txt",5,"5 B"`,
		FormatCSVLine(samplePair))

	big := types.DuplicatePair{PathA: "/a b/c.iso", SizeA: 1536 * 1024, PathB: "/d.iso", SizeB: 1536 * 1024}
	assert.Equal(t,
		`"/a b/c.iso",1572864,"1.5 MiB","/d.iso",1572864,"1.5 MiB"`,
		FormatCSVLine(big))
}

func TestCSVSink_HeaderOnceThenLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewCSVSink(&buf)

	require.NoError(t, sink.Report(samplePair))
	require.NoError(t, sink.Report(types.DuplicatePair{PathA: "/data/x.txt", SizeA: 5, PathB: "/data/z.txt", SizeB: 5}))
	require.NoError(t, sink.Finish())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, CSVHeader, lines[0])
	assert.Equal(t, `"/data/x.txt",5,"5 B","/data/y.txt",5,"5 B"`, lines[1])
	assert.Equal(t, `"/data/x.txt",5,"5 B","/data/z.txt",5,"5 B"`, lines[2])
	assert.NotContains(t, buf.String(), NoDuplicatesMessage)
}

func TestCSVSink_NoDuplicates(t *testing.T) {
	var buf bytes.Buffer
	sink := NewCSVSink(&buf)
	require.NoError(t, sink.Finish())

	assert.Equal(t, NoDuplicatesMessage+"\n", buf.String())
}

func TestCSVSink_HeaderIsPerSink(t *testing.T) {
	// Header state belongs to one sink; a second scan gets its own header.
	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		sink := NewCSVSink(&buf)
		require.NoError(t, sink.Report(samplePair))
		require.NoError(t, sink.Finish())
		assert.True(t, strings.HasPrefix(buf.String(), CSVHeader+"\n"))
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVSink_WriteError(t *testing.T) {
	sink := NewCSVSink(failingWriter{})
	assert.Error(t, sink.Report(samplePair))
	assert.Error(t, sink.Finish())
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	sink, err := Get("json", &buf)
	require.NoError(t, err)

	require.NoError(t, sink.Report(samplePair))
	require.NoError(t, sink.Finish())

	var doc reportDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Count)
	require.Len(t, doc.Pairs, 1)
	assert.Equal(t, "/data/x.txt", doc.Pairs[0].PathA)
	assert.Equal(t, "5 B", doc.Pairs[0].SizeBHuman)
}

func TestJSONSink_Empty(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)
	require.NoError(t, sink.Finish())
	assert.Contains(t, buf.String(), `"pairs": []`)
	assert.Contains(t, buf.String(), `"count": 0`)
}

func TestYAMLSink(t *testing.T) {
	var buf bytes.Buffer
	sink, err := Get("yaml", &buf)
	require.NoError(t, err)

	require.NoError(t, sink.Report(samplePair))
	require.NoError(t, sink.Finish())

	var doc reportDoc
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Count)
	require.Len(t, doc.Pairs, 1)
	assert.Equal(t, "/data/y.txt", doc.Pairs[0].PathB)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "yaml"}, Available())

	_, err := Get("xml", &bytes.Buffer{})
	assert.Error(t, err)

	r := NewRegistry()
	r.Register("collect", func(io.Writer) Sink { return &Collector{} })
	sink, err := r.Get("collect", nil)
	require.NoError(t, err)
	require.NoError(t, sink.Report(samplePair))
	require.NoError(t, sink.Finish())

	c := sink.(*Collector)
	assert.True(t, c.Finished)
	assert.Equal(t, []types.DuplicatePair{samplePair}, c.Pairs)
}
