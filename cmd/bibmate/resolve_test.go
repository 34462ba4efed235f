package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hjiang13/bibtexmate/internal/batch"
	"github.com/hjiang13/bibtexmate/internal/catalog"
	"github.com/hjiang13/bibtexmate/internal/config"
)

// fakeCrossref serves title search and BibTeX rendering for one known work.
func fakeCrossref(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/works":
			q := r.URL.Query().Get("query.bibliographic")
			if strings.Contains(strings.ToLower(q), "attention") {
				w.Write([]byte(`{"message":{"items":[
					{"DOI":"10.48550/arXiv.1706.03762","title":["Attention Is All You Need"]},
					{"DOI":"10.1/other","title":["Attention and Memory"]}]}}`))
				return
			}
			w.Write([]byte(`{"message":{"items":[{"DOI":"10.1/unrelated","title":["Deep Residual Learning for Image Recognition"]}]}}`))
		case r.URL.Path == "/10.48550/arxiv.1706.03762":
			w.Write([]byte("@article{Vaswani_2017, title={Attention Is All You Need}}\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(srv *httptest.Server) *config.GlobalConfig {
	cfg := config.Defaults()
	cfg.CatalogURL = srv.URL
	cfg.ResolverURL = srv.URL
	cfg.RateLimit = 1000
	return &cfg
}

func TestResolveBatch(t *testing.T) {
	cfg := testConfig(fakeCrossref(t))

	out := resolveBatch(context.Background(), cfg, resolveOptions{}, batch.Request{
		Titles: []string{"attention is all you need", "", "Zzzz Nonexistent Paper Title"},
		DOIs:   []string{"10.9999/missing"},
		Format: catalog.BibTeX,
	})

	if out.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (blank skipped)", out.Len())
	}
	if out.Resolved() != 1 {
		t.Errorf("Resolved() = %d, want 1", out.Resolved())
	}
	first := out.Entries[0]
	if first.Result.DOI != "10.48550/arxiv.1706.03762" || first.Result.Similarity != 1 {
		t.Errorf("first = %+v", first.Result)
	}
	if got := out.Entries[1].Text; got != "No BibTeX entry found for: Zzzz Nonexistent Paper Title" {
		t.Errorf("marker = %q", got)
	}
	if out.Entries[2].Result.Status != catalog.StatusFetchFailed {
		t.Errorf("missing DOI status = %s", out.Entries[2].Result.Status)
	}
}

func TestWriteArtifact(t *testing.T) {
	cfg := testConfig(fakeCrossref(t))
	out := resolveBatch(context.Background(), cfg, resolveOptions{Exact: true}, batch.Request{
		Titles: []string{"Attention Is All You Need", "Zzzz Nonexistent Paper Title"},
		Format: catalog.BibTeX,
	})

	path := filepath.Join(t.TempDir(), "refs.bib")
	if err := writeArtifact(path, out); err != nil {
		t.Fatalf("writeArtifact() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "@article{Vaswani_2017, title={Attention Is All You Need}}\n" {
		t.Errorf("artifact = %q", data)
	}
}

func TestFormatFor(t *testing.T) {
	cfg := config.Defaults()
	cfg.Format = "ris"

	if f, err := formatFor("", &cfg); err != nil || f != catalog.RIS {
		t.Errorf("formatFor(\"\") = %v, %v; want RIS from config", f, err)
	}
	if f, err := formatFor("mla", &cfg); err != nil || f != catalog.MLA {
		t.Errorf("formatFor(mla) = %v, %v", f, err)
	}
	if _, err := formatFor("chicago", &cfg); err == nil {
		t.Error("formatFor(chicago) should fail")
	}
}

func TestNewMatcher(t *testing.T) {
	cfg := config.Defaults()
	cfg.Threshold = 0.9

	if _, ok := newMatcher(resolveOptions{Exact: true}, &cfg).(catalog.ExactMatcher); !ok {
		t.Error("--exact should select ExactMatcher")
	}
	m, ok := newMatcher(resolveOptions{}, &cfg).(catalog.FuzzyMatcher)
	if !ok || m.Threshold != 0.9 {
		t.Errorf("default matcher = %+v, want fuzzy at config threshold", m)
	}
	m, _ = newMatcher(resolveOptions{Threshold: 0.7}, &cfg).(catalog.FuzzyMatcher)
	if m.Threshold != 0.7 {
		t.Errorf("flag threshold = %v, want 0.7", m.Threshold)
	}
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("Title A\r\n\n  Title B  \n"))
	if err != nil {
		t.Fatalf("readLines() error = %v", err)
	}
	want := []string{"Title A", "", "Title B"}
	if len(lines) != len(want) {
		t.Fatalf("readLines() = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString(short) = %q", got)
	}
	if got := truncateString("Müller und Söhne GmbH", 10); got != "Müller ..." {
		t.Errorf("truncateString() = %q", got)
	}
}
