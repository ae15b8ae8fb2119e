// ABOUTME: Tests for corpus loading, search, fetch and the research tool pack.
// ABOUTME: Record fixtures are written to t.TempDir().

package research

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/hiring-router/internal/tools"
)

const fixture = `[
	{"id": "r1", "title": "Go backend salaries", "text": "Median pay for Go engineers.", "metadata": {"region": "Moscow"}},
	{"id": "r2", "title": "Interview loops", "text": "How panels run.", "metadata": {"year": 2026}},
	{"id": "r3", "title": "Sourcing", "text": "Finding people on hh.ru", "metadata": {}}
]`

func loadFixture(t *testing.T) *Corpus {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	return c
}

func TestLoad(t *testing.T) {
	c := loadFixture(t)
	assert.Equal(t, 3, c.Len())

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id":"x"}`), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	c := loadFixture(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"SALARIES", []string{"r1"}},
		{"moscow", []string{"r1"}},
		{"2026", []string{"r2"}},
		{"panels hh.ru", []string{"r2", "r3"}},
		{"go", []string{"r1"}},
		{"nothing-matches", []string{}},
		{"   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Search(tt.query))
		})
	}
}

func TestFetch(t *testing.T) {
	c := loadFixture(t)

	rec, err := c.Fetch("r2")
	require.NoError(t, err)
	assert.Equal(t, "Interview loops", rec.Title)
	assert.Equal(t, float64(2026), rec.Metadata["year"])

	_, err = c.Fetch("r9")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "r9")
}

func TestPack_ThroughRegistry(t *testing.T) {
	reg := tools.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, reg.Register(Pack(loadFixture(t))))
	ctx := context.Background()

	out, err := reg.Call(ctx, "search", map[string]any{"query": "interview"})
	require.NoError(t, err)
	assert.Equal(t, SearchResult{IDs: []string{"r2"}}, out)

	out, err = reg.Call(ctx, "fetch", map[string]any{"id": "r3"})
	require.NoError(t, err)
	assert.Equal(t, "Sourcing", out.(Record).Title)

	_, err = reg.Call(ctx, "fetch", map[string]any{"id": "nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Call(ctx, "fetch", map[string]any{})
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)
}
