// ABOUTME: Aggregator replaying the active request log into summary counts.
// ABOUTME: Malformed or non-object lines are skipped; a missing file yields an empty summary.

package analytics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/valyala/fastjson"
)

// Summary counts log lines by level and by event.
type Summary struct {
	Total   int            `json:"total"`
	ByLevel map[string]int `json:"by_level"`
	ByEvent map[string]int `json:"by_event"`
}

func newSummary() Summary {
	return Summary{ByLevel: map[string]int{}, ByEvent: map[string]int{}}
}

// Aggregator summarizes one JSONL file.
type Aggregator struct {
	path   string
	parser fastjson.ParserPool
}

// NewAggregator creates an Aggregator reading path.
func NewAggregator(path string) *Aggregator {
	return &Aggregator{path: path}
}

// Path returns the file the aggregator reads.
func (a *Aggregator) Path() string { return a.path }

// Summarize reads the file from the start. It never modifies the file.
func (a *Aggregator) Summarize() (Summary, error) {
	f, err := os.Open(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return newSummary(), nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	return a.SummarizeReader(f)
}

// SummarizeReader summarizes newline-delimited JSON read from r.
func (a *Aggregator) SummarizeReader(r io.Reader) (Summary, error) {
	p := a.parser.Get()
	defer a.parser.Put(p)

	sum := newSummary()
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			countLine(p, line, &sum)
		}
		if err == io.EOF {
			return sum, nil
		}
		if err != nil {
			return sum, fmt.Errorf("read log: %w", err)
		}
	}
}

func countLine(p *fastjson.Parser, line []byte, sum *Summary) {
	v, err := p.ParseBytes(line)
	if err != nil || v.Type() != fastjson.TypeObject {
		return
	}
	sum.Total++

	if lv := v.Get("level"); lv != nil && lv.Type() == fastjson.TypeString {
		sum.ByLevel[string(lv.GetStringBytes())]++
	}
	if ev := v.Get("event"); ev != nil {
		if ev.Type() == fastjson.TypeString {
			sum.ByEvent[string(ev.GetStringBytes())]++
		} else {
			sum.ByEvent[ev.String()]++
		}
	}
}
