// ABOUTME: Tests for the log aggregator and the zstd exporter.
// ABOUTME: Fixture logs are written under t.TempDir().

package analytics

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSummarize_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.jsonl")
	writeFile(t, path, strings.Join([]string{
		`{"level":"INFO","event":"tool_call","tool":"generate_quiz"}`,
		`{"level":"INFO","event":"tool_result"}`,
		`{"level":"ERROR","event":"tool_error"}`,
		`{"level":"INFO","message":"server started"}`,
		`{"level":"WARNING","event":"tool_call"}`,
		`{"level":"INFO","event":"tool_ca`,
	}, "\n"))

	sum, err := NewAggregator(path).Summarize()
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, map[string]int{"INFO": 3, "ERROR": 1, "WARNING": 1}, sum.ByLevel)
	assert.Equal(t, map[string]int{"tool_call": 2, "tool_result": 1, "tool_error": 1}, sum.ByEvent)
}

func TestSummarize_MissingFileIsEmpty(t *testing.T) {
	sum, err := NewAggregator(filepath.Join(t.TempDir(), "nope.jsonl")).Summarize()
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Total)
	assert.NotNil(t, sum.ByLevel)
	assert.NotNil(t, sum.ByEvent)
}

func TestSummarizeReader_OddValues(t *testing.T) {
	input := strings.Join([]string{
		``,
		`[1,2,3]`,
		`"just a string"`,
		`{"level":20,"event":7}`,
		`{"event":null}`,
		`{}`,
	}, "\n") + "\n"

	sum, err := NewAggregator("").SummarizeReader(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Total)
	assert.Empty(t, sum.ByLevel)
	assert.Equal(t, map[string]int{"7": 1, "null": 1}, sum.ByEvent)
}

func TestSummarize_DoesNotModifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.jsonl")
	content := "{\"level\":\"INFO\"}\n"
	writeFile(t, path, content)

	_, err := NewAggregator(path).Summarize()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

type fakeSource struct {
	dir     string
	rotated []string
}

func (f fakeSource) Dir() string                     { return f.dir }
func (f fakeSource) Path() string                    { return filepath.Join(f.dir, "requests.jsonl") }
func (f fakeSource) RotatedFiles() ([]string, error) { return f.rotated, nil }

func decompress(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	dec, err := zstd.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer dec.Close()
	out, err := io.ReadAll(dec)
	require.NoError(t, err)
	return string(out)
}

func TestExport_ConcatenatesOldestFirst(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "requests.jsonl.2026-10-13")
	newer := filepath.Join(dir, "requests.jsonl.2026-10-14")
	writeFile(t, older, "{\"n\":1}\n")
	writeFile(t, newer, "{\"n\":2}\n")
	writeFile(t, filepath.Join(dir, "requests.jsonl"), "{\"n\":3}\n")

	now := func() time.Time { return time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC) }
	res, err := NewExporter(fakeSource{dir: dir, rotated: []string{older, newer}}, now).Export()
	require.NoError(t, err)

	assert.Equal(t, dir, res.ExportPath)
	assert.Equal(t, filepath.Join(dir, ExportDirName, "requests-20261015T083000Z.jsonl.zst"), res.BundlePath)
	assert.Equal(t, []string{"requests.jsonl.2026-10-13", "requests.jsonl.2026-10-14", "requests.jsonl"}, res.Files)
	assert.Equal(t, int64(24), res.Bytes)

	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n", decompress(t, res.BundlePath))
}

func TestExport_NoLogsYieldsEmptyBundle(t *testing.T) {
	dir := t.TempDir()
	res, err := NewExporter(fakeSource{dir: dir}, nil).Export()
	require.NoError(t, err)

	assert.Empty(t, res.Files)
	assert.Zero(t, res.Bytes)
	assert.Equal(t, "", decompress(t, res.BundlePath))
}

func TestExport_SameSecondKeepsEarlierBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "requests.jsonl"), "{\"n\":1}\n")
	now := func() time.Time { return time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC) }
	exp := NewExporter(fakeSource{dir: dir}, now)

	first, err := exp.Export()
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "requests.jsonl"), "{\"n\":2}\n")
	second, err := exp.Export()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ExportDirName, "requests-20261015T083000Z-1.jsonl.zst"), second.BundlePath)
	assert.Equal(t, "{\"n\":1}\n", decompress(t, first.BundlePath))
	assert.Equal(t, "{\"n\":2}\n", decompress(t, second.BundlePath))
}
