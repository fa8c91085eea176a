package featurizer

import (
	"fmt"

	"github.com/crimson-sun/happymail/internal/engine/sparse"
)

// Norm selects the vector normalization applied after counting.
type Norm string

const (
	NormL2   Norm = "L2"
	NormNone Norm = "None"
)

const (
	wordPrefix = "w:"
	charPrefix = "c:"
)

// Options configures text featurization.
type Options struct {
	WordNgramLength int  `json:"word_ngram_length" yaml:"word_ngram_length"`
	CharNgramLength int  `json:"char_ngram_length" yaml:"char_ngram_length"`
	KeepDiacritics  bool `json:"keep_diacritics" yaml:"keep_diacritics"`
	Norm            Norm `json:"norm" yaml:"norm"`
}

// DefaultOptions returns word uni+bigrams, char trigrams and L2 norm.
func DefaultOptions() Options {
	return Options{
		WordNgramLength: 2,
		CharNgramLength: 3,
		Norm:            NormL2,
	}
}

func (o Options) validate() error {
	if o.WordNgramLength < 0 || o.CharNgramLength < 0 {
		return fmt.Errorf("featurizer: negative n-gram length (word=%d, char=%d)", o.WordNgramLength, o.CharNgramLength)
	}
	if o.WordNgramLength == 0 && o.CharNgramLength == 0 {
		return fmt.Errorf("featurizer: word and char n-grams both disabled")
	}
	switch o.Norm {
	case NormL2, NormNone:
	default:
		return fmt.Errorf("featurizer: unknown norm %q", o.Norm)
	}
	return nil
}

// Featurizer turns free text into a fixed-dimension bag of word and char
// n-gram counts. The vocabulary is frozen at Fit; Transform is pure.
type Featurizer struct {
	opts  Options
	vocab *vocab
}

// Fit learns the n-gram vocabulary from the training texts.
func Fit(texts []string, opts Options) (*Featurizer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	f := &Featurizer{opts: opts, vocab: newVocab()}
	for _, text := range texts {
		for _, g := range f.grams(text) {
			f.vocab.add(g)
		}
	}
	return f, nil
}

// FromVocabulary rebuilds a fitted Featurizer from its ordered vocabulary.
func FromVocabulary(opts Options, ordered []string) (*Featurizer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	f := &Featurizer{opts: opts, vocab: newVocab()}
	for i, g := range ordered {
		if f.vocab.contains(g) {
			return nil, fmt.Errorf("featurizer: duplicate vocabulary entry %q at slot %d", g, i)
		}
		f.vocab.add(g)
	}
	return f, nil
}

// Dim returns the output dimension.
func (f *Featurizer) Dim() int { return f.vocab.size() }

// Options returns the options the Featurizer was built with.
func (f *Featurizer) Options() Options { return f.opts }

// Vocabulary returns the n-gram slots ordered by id.
func (f *Featurizer) Vocabulary() []string {
	return append([]string(nil), f.vocab.idToToken...)
}

// Transform maps text to its feature vector. N-grams outside the frozen
// vocabulary are dropped.
func (f *Featurizer) Transform(text string) sparse.Vector {
	counts := make(map[int]float64)
	for _, g := range f.grams(text) {
		if id, ok := f.vocab.lookup(g); ok {
			counts[id]++
		}
	}
	v := sparse.FromMap(f.vocab.size(), counts)
	if f.opts.Norm == NormL2 {
		v = v.L2Normalize()
	}
	return v
}

// grams returns the prefixed word then char n-grams of text.
func (f *Featurizer) grams(text string) []string {
	normalized := normalize(text, f.opts.KeepDiacritics)

	var out []string
	if f.opts.WordNgramLength > 0 {
		for _, g := range wordNgrams(words(normalized), f.opts.WordNgramLength) {
			out = append(out, wordPrefix+g)
		}
	}
	if f.opts.CharNgramLength > 0 {
		for _, g := range charNgrams(normalized, f.opts.CharNgramLength) {
			out = append(out, charPrefix+g)
		}
	}
	return out
}
