package catalog

import (
	"errors"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b     string
		min, max float64
	}{
		{"Attention Is All You Need", "attention  is all you NEED", 1, 1},
		{"Ｆｕｌｌｗｉｄｔｈ", "fullwidth", 1, 1},
		{"Deep Residual Learning", "Deep Residual Learning for Image Recognition", 0.5, 0.8},
		{"Zzzz Nonexistent Paper Title", "BERT: Pre-training of Deep Bidirectional Transformers", 0, 0.5},
		{"", "anything", 0, 0},
	}
	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Similarity(%q, %q) = %.3f, want [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestFuzzyMatcher_Select(t *testing.T) {
	m := NewFuzzyMatcher(DefaultThreshold)
	candidates := []Candidate{
		{DOI: "10.1/a", Title: "Attention and Memory in Deep Learning"},
		{DOI: "10.48550/arxiv.1706.03762", Title: "Attention Is All You Need"},
	}

	sel, err := m.Select("Attention Is All You Need", candidates)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.Candidate.DOI != "10.48550/arxiv.1706.03762" || sel.Similarity != 1 {
		t.Errorf("Select() = %+v", sel)
	}
}

func TestFuzzyMatcher_TieKeepsFirst(t *testing.T) {
	m := NewFuzzyMatcher(0.5)
	candidates := []Candidate{
		{DOI: "10.1/first", Title: "Same Title"},
		{DOI: "10.1/second", Title: "same title"},
	}
	sel, err := m.Select("Same Title", candidates)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.Candidate.DOI != "10.1/first" {
		t.Errorf("tie chose %s, want first", sel.Candidate.DOI)
	}
}

func TestFuzzyMatcher_Rejects(t *testing.T) {
	m := NewFuzzyMatcher(DefaultThreshold)
	candidates := []Candidate{
		{DOI: "10.1/a", Title: "Deep Residual Learning for Image Recognition"},
		{DOI: "10.1/b", Title: "BERT: Pre-training of Deep Bidirectional Transformers"},
	}
	sel, err := m.Select("Zzzz Nonexistent Paper Title", candidates)
	if !errors.Is(err, ErrNoAcceptableMatch) {
		t.Fatalf("Select() error = %v, want ErrNoAcceptableMatch", err)
	}
	if sel.Similarity > DefaultThreshold {
		t.Errorf("rejected similarity %.2f above threshold", sel.Similarity)
	}

	if _, err := m.Select("anything", nil); !errors.Is(err, ErrNoAcceptableMatch) {
		t.Errorf("empty candidates error = %v", err)
	}
}

func TestFuzzyMatcher_ThresholdIsStrict(t *testing.T) {
	m := FuzzyMatcher{Threshold: 1}
	_, err := m.Select("Same", []Candidate{{DOI: "10.1/x", Title: "same"}})
	if !errors.Is(err, ErrNoAcceptableMatch) {
		t.Errorf("similarity equal to threshold should be rejected, got %v", err)
	}
	if m.Rows() != FuzzyRows {
		t.Errorf("Rows() = %d, want %d", m.Rows(), FuzzyRows)
	}
}

func TestNewFuzzyMatcher_InvalidThreshold(t *testing.T) {
	for _, th := range []float64{0, -1, 1, 1.5} {
		if m := NewFuzzyMatcher(th); m.Threshold != DefaultThreshold {
			t.Errorf("NewFuzzyMatcher(%v).Threshold = %v", th, m.Threshold)
		}
	}
}

func TestFuzzyMatcher_ExtractedTitleSentence(t *testing.T) {
	m := NewFuzzyMatcher(DefaultThreshold)
	sel, err := m.Select("Deep residual learning for image recognition", []Candidate{
		{DOI: "10.1109/cvpr.2016.91", Title: "You Only Look Once"},
		{DOI: "10.1109/cvpr.2016.90", Title: "Deep Residual Learning for Image Recognition"},
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.Candidate.DOI != "10.1109/cvpr.2016.90" {
		t.Errorf("selected %q", sel.Candidate.DOI)
	}
}

func TestExactMatcher(t *testing.T) {
	m := ExactMatcher{}
	if m.Rows() != 1 {
		t.Errorf("Rows() = %d, want 1", m.Rows())
	}

	sel, err := m.Select("attention is all you need", []Candidate{{DOI: "10.1/x", Title: "Attention Is All You Need"}})
	if err != nil || sel.Similarity != 1 {
		t.Errorf("Select() = %+v, %v", sel, err)
	}

	_, err = m.Select("Attention Is All You Need!", []Candidate{{DOI: "10.1/x", Title: "Attention Is All You Need"}})
	if !errors.Is(err, ErrNoAcceptableMatch) {
		t.Errorf("near-miss error = %v, want ErrNoAcceptableMatch", err)
	}
}
