package testdata

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crimson-sun/happymail/internal/dataset"
	"github.com/crimson-sun/happymail/internal/model"
)

// corpusTSV is a small three-class sentiment corpus in the training file
// layout: header, then Sentiment, SentimentText, LoggedIn.
//
//go:embed corpus.tsv
var corpusTSV []byte

// CorpusTSV returns the raw corpus bytes.
func CorpusTSV() []byte {
	return bytes.Clone(corpusTSV)
}

// LoadCorpus parses the embedded corpus.
func LoadCorpus() ([]model.Record, error) {
	r := dataset.NewReader(bytes.NewReader(corpusTSV), "corpus.tsv", dataset.DefaultOptions())
	recs, err := dataset.Materialize(r.Records())
	if err != nil {
		return nil, fmt.Errorf("parse corpus.tsv: %w", err)
	}
	return recs, nil
}

// WriteCorpus writes the corpus into dir and returns its path.
func WriteCorpus(dir string) (string, error) {
	path := filepath.Join(dir, "corpus.tsv")
	if err := os.WriteFile(path, corpusTSV, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
