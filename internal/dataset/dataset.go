package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/crimson-sun/happymail/internal/model"
)

// maxLineSize bounds a single row. Free-text columns can be long.
const maxLineSize = 1 << 20

// ErrMalformedRow is returned when a row carries fewer fields than the schema.
var ErrMalformedRow = errors.New("dataset: malformed row")

// RowError describes the row that stopped a read.
type RowError struct {
	Line   int // 1-based line number in the file
	Fields int
	Want   int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("dataset: line %d: got %d fields, want at least %d", e.Line, e.Fields, e.Want)
}

func (e *RowError) Unwrap() error { return ErrMalformedRow }

// Options controls how a delimited file is read.
type Options struct {
	HasHeader bool
	Separator rune
}

// DefaultOptions matches the sentiment training file: tab separated with a
// header row.
func DefaultOptions() Options {
	return Options{HasHeader: true, Separator: '\t'}
}

// Reader yields records from delimited text. It is single pass.
type Reader struct {
	src  io.Reader
	c    io.Closer
	path string
	opts Options
	used bool
}

// Open opens path for reading. Rows are not read until Records is ranged over.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	r := NewReader(f, path, opts)
	r.c = f
	return r, nil
}

// NewReader reads records from src. name is used in error messages.
func NewReader(src io.Reader, name string, opts Options) *Reader {
	if opts.Separator == 0 {
		opts.Separator = '\t'
	}
	return &Reader{src: src, path: name, opts: opts}
}

// Records returns a lazy sequence of rows. Columns bind by position:
// 0 Sentiment, 1 SentimentText, 2 LoggedIn. Extra fields are ignored and
// blank lines skipped. The first error ends the sequence. A second call
// yields a single error because the underlying file has been consumed.
func (r *Reader) Records() iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		if r.used {
			yield(model.Record{}, fmt.Errorf("dataset: %s: records already consumed", r.path))
			return
		}
		r.used = true

		scanner := bufio.NewScanner(r.src)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		sep := string(r.opts.Separator)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSuffix(scanner.Text(), "\r")
			if line == 1 && r.opts.HasHeader {
				continue
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			fields := strings.Split(text, sep)
			if len(fields) < model.NumColumns {
				yield(model.Record{}, &RowError{Line: line, Fields: len(fields), Want: model.NumColumns})
				return
			}
			rec := model.Record{
				Sentiment:     fields[0],
				SentimentText: fields[1],
				LoggedIn:      fields[2],
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(model.Record{}, fmt.Errorf("dataset: read %s: %w", r.path, err))
		}
	}
}

// Close releases the underlying file, if Open created it.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// Materialize drains seq into memory so later stages can make repeated
// passes without re-reading the source.
func Materialize(seq iter.Seq2[model.Record, error]) ([]model.Record, error) {
	var out []model.Record
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadAll opens path, materializes every record and closes the file.
func ReadAll(path string, opts Options) ([]model.Record, error) {
	r, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Materialize(r.Records())
}
