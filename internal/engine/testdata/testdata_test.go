package testdata

import (
	"testing"

	"github.com/crimson-sun/happymail/internal/dataset"
)

func TestLoadCorpus(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}

	if len(entries) == 0 {
		t.Fatal("corpus is empty")
	}
	t.Logf("Total entries: %d", len(entries))

	// Every entry must have all required fields.
	for i, e := range entries {
		if e.Sentiment == "" {
			t.Errorf("entry[%d] has empty sentiment", i)
		}
		if e.SentimentText == "" {
			t.Errorf("entry[%d] has empty text", i)
		}
		if e.LoggedIn != "true" && e.LoggedIn != "false" {
			t.Errorf("entry[%d] has LoggedIn %q", i, e.LoggedIn)
		}
	}
}

func TestCorpusCoverage(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Sentiment]++
	}
	for _, label := range []string{"happy", "sad", "angry"} {
		if counts[label] < 10 {
			t.Errorf("label %q has %d entries, want at least 10", label, counts[label])
		}
	}
	if len(counts) != 3 {
		t.Errorf("expected 3 labels, got %v", counts)
	}
}

func TestWriteCorpus(t *testing.T) {
	path, err := WriteCorpus(t.TempDir())
	if err != nil {
		t.Fatalf("WriteCorpus() error: %v", err)
	}
	recs, err := dataset.ReadAll(path, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("ReadAll(%s) error: %v", path, err)
	}
	if len(recs) != 45 {
		t.Errorf("expected 45 records, got %d", len(recs))
	}
}
