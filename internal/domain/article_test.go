package domain

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassificationIsRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cls  *Classification
		want bool
	}{
		{name: "nil result", cls: nil, want: false},
		{name: "valid symbol above threshold", cls: &Classification{Symbol: "NSE:RELIANCE", Confidence: 0.92}, want: true},
		{name: "lowercase symbol", cls: &Classification{Symbol: "nse:tcs", Confidence: 0.9}, want: true},
		{name: "threshold is exclusive", cls: &Classification{Symbol: "NSE:INFY", Confidence: 0.8}, want: false},
		{name: "low confidence", cls: &Classification{Symbol: "NSE:INFY", Confidence: 0.3}, want: false},
		{name: "missing symbol", cls: &Classification{Confidence: 0.99}, want: false},
		{name: "wrong exchange", cls: &Classification{Symbol: "BSE:500325", Confidence: 0.99}, want: false},
		{name: "symbol too short", cls: &Classification{Symbol: "NSE:A", Confidence: 0.99}, want: false},
		{name: "symbol too long", cls: &Classification{Symbol: "NSE:ABCDEFGHIJK", Confidence: 0.99}, want: false},
		{name: "symbol with suffix", cls: &Classification{Symbol: "NSE:TCS.NS", Confidence: 0.99}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.cls.IsRelevant(nil))
		})
	}
}

func TestClassificationIsRelevantCustomPattern(t *testing.T) {
	t.Parallel()

	bse := regexp.MustCompile(`(?i)^BSE:[0-9]{6}$`)
	cls := &Classification{Symbol: "BSE:500325", Confidence: 0.95}

	require.True(t, cls.IsRelevant(bse))
	require.False(t, cls.IsRelevant(DefaultSymbolPattern))
}

func TestNewNewsRecord(t *testing.T) {
	t.Parallel()

	stub := ArticleStub{Title: "Reliance posts record profit", Link: "https://example.com/a", PublishedLabel: "28 Mar 2024"}
	cls := &Classification{CompanyName: "Reliance Industries", Symbol: "nse:reliance", Confidence: 0.92, NewsDate: "2024-03-28"}

	record, err := NewNewsRecord(stub, cls, "  Shares rallied.  ", nil)
	require.NoError(t, err)
	require.Equal(t, "NSE:RELIANCE", record.Symbol)
	require.Equal(t, "Reliance Industries", record.CompanyName)
	require.Equal(t, "Reliance posts record profit", record.Headline)
	require.Equal(t, "28 Mar 2024", record.PublishedLabel)
	require.Equal(t, "Shares rallied.", record.Conclusion)
	require.Equal(t, "2024-03-28", record.NewsDate)
}

func TestNewNewsRecordRejectsIrrelevant(t *testing.T) {
	t.Parallel()

	_, err := NewNewsRecord(ArticleStub{Title: "x"}, &Classification{Symbol: "NSE:TCS", Confidence: 0.5}, "c", nil)
	require.True(t, errors.Is(err, ErrNotRelevant))
}

func TestNewNewsRecordEmptyConclusion(t *testing.T) {
	t.Parallel()

	record, err := NewNewsRecord(ArticleStub{Title: "x"}, &Classification{Symbol: "NSE:TCS", Confidence: 0.9}, " ", nil)
	require.NoError(t, err)
	require.Equal(t, ConclusionUnavailable, record.Conclusion)
}
