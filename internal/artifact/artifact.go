package artifact

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/klauspost/compress/flate"

	"github.com/crimson-sun/happymail/internal/engine"
	"github.com/crimson-sun/happymail/internal/engine/featurizer"
	"github.com/crimson-sun/happymail/internal/engine/labels"
	"github.com/crimson-sun/happymail/internal/engine/normalize"
	"github.com/crimson-sun/happymail/internal/engine/trainer"
	"github.com/crimson-sun/happymail/internal/model"
)

// Format identifies archives written by this package.
const (
	Format  = "happymail-model"
	Version = 1
)

// Archive entry names.
const (
	manifestEntry   = "manifest.json"
	schemaEntry     = "schema.json"
	labelsEntry     = "labels.json"
	featurizerEntry = "featurizer.json"
	normalizerEntry = "normalizer.json"
	weightsEntry    = "weights.safetensors"

	weightsTensor = "classifier.weight"
)

// ErrCorrupt is returned when an archive is missing entries or holds
// inconsistent content.
var ErrCorrupt = errors.New("artifact: corrupt model archive")

type manifest struct {
	Format  string            `json:"format"`
	Version int               `json:"version"`
	Stages  []string          `json:"stages"`
	Columns map[string]string `json:"columns"`
}

type labelsFile struct {
	Labels []string `json:"labels"`
}

type featurizerFile struct {
	Options    featurizer.Options `json:"options"`
	Vocabulary []string           `json:"vocabulary"`
}

type normalizerFile struct {
	Options normalize.MinMaxOptions `json:"options"`
	Mins    []float64               `json:"mins"`
	Maxs    []float64               `json:"maxs"`
}

func columns() map[string]string {
	return map[string]string{
		"label":           engine.LabelColumn,
		"text":            engine.TextColumn,
		"featurized":      engine.FeaturizedColumn,
		"features":        engine.FeaturesColumn,
		"predicted_label": engine.PredictedLabelColumn,
		"score":           engine.ScoreColumn,
	}
}

// Save writes the fitted pipeline and the training schema to path as a
// single zip archive. An existing file is truncated and overwritten; an
// interrupted save leaves a partial file behind.
func Save(path string, m *engine.Model, schema model.Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if err := Write(f, m, schema); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("artifact: close %s: %w", path, err)
	}
	return nil
}

// Write encodes the archive to w. Entries carry no timestamps, so equal
// models produce identical bytes.
func Write(w io.Writer, m *engine.Model, schema model.Schema) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	mins, maxs := m.Normalizer().Bounds()
	jsonEntries := []struct {
		name string
		v    any
	}{
		{manifestEntry, manifest{Format: Format, Version: Version, Stages: engine.Stages(), Columns: columns()}},
		{schemaEntry, schema},
		{labelsEntry, labelsFile{Labels: m.Labels().Labels()}},
		{featurizerEntry, featurizerFile{Options: m.Featurizer().Options(), Vocabulary: m.Featurizer().Vocabulary()}},
		{normalizerEntry, normalizerFile{Options: m.Normalizer().Options(), Mins: mins, Maxs: maxs}},
	}
	for _, e := range jsonEntries {
		data, err := json.MarshalIndent(e.v, "", "  ")
		if err != nil {
			return fmt.Errorf("artifact: marshal %s: %w", e.name, err)
		}
		if err := writeEntry(zw, e.name, data); err != nil {
			return err
		}
	}

	var tensor bytes.Buffer
	wts := m.Weights()
	if err := writeTensor(&tensor, weightsTensor, []int{wts.Classes(), wts.Dim() + 1}, wts.Data()); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if err := writeEntry(zw, weightsEntry, tensor.Bytes()); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("artifact: finish archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	ew, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("artifact: create %s: %w", name, err)
	}
	if _, err := ew.Write(data); err != nil {
		return fmt.Errorf("artifact: write %s: %w", name, err)
	}
	return nil
}

// Load reads an archive written by Save and rebuilds the model and the
// schema it was trained on.
func Load(path string) (*engine.Model, model.Schema, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("artifact: %w", err)
	}
	defer zr.Close()
	return read(&zr.Reader)
}

// Read decodes an archive held in memory.
func Read(data []byte) (*engine.Model, model.Schema, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return read(zr)
}

func read(zr *zip.Reader) (*engine.Model, model.Schema, error) {
	var man manifest
	if err := readJSON(zr, manifestEntry, &man); err != nil {
		return nil, model.Schema{}, err
	}
	if man.Format != Format || man.Version != Version {
		return nil, model.Schema{}, fmt.Errorf("%w: format %q version %d, want %q version %d",
			ErrCorrupt, man.Format, man.Version, Format, Version)
	}
	if !slices.Equal(man.Stages, engine.Stages()) {
		return nil, model.Schema{}, fmt.Errorf("%w: unexpected stages %v", ErrCorrupt, man.Stages)
	}

	var schema model.Schema
	if err := readJSON(zr, schemaEntry, &schema); err != nil {
		return nil, model.Schema{}, err
	}

	var lf labelsFile
	if err := readJSON(zr, labelsEntry, &lf); err != nil {
		return nil, model.Schema{}, err
	}
	keys, err := labels.FromLabels(lf.Labels)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var ff featurizerFile
	if err := readJSON(zr, featurizerEntry, &ff); err != nil {
		return nil, model.Schema{}, err
	}
	feat, err := featurizer.FromVocabulary(ff.Options, ff.Vocabulary)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var nf normalizerFile
	if err := readJSON(zr, normalizerEntry, &nf); err != nil {
		return nil, model.Schema{}, err
	}
	mm, err := normalize.FromBounds(nf.Options, nf.Mins, nf.Maxs)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	raw, err := readEntry(zr, weightsEntry)
	if err != nil {
		return nil, model.Schema{}, err
	}
	shape, values, err := readTensor(raw, weightsTensor)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(shape) != 2 {
		return nil, model.Schema{}, fmt.Errorf("%w: weight tensor shape %v, want 2D", ErrCorrupt, shape)
	}
	w, err := trainer.NewWeights(shape[0], shape[1]-1, values)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	m, err := engine.NewModel(keys, feat, mm, w)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return m, schema, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCorrupt, name, err)
	}
	return data, nil
}

func readJSON(zr *zip.Reader, name string, v any) error {
	data, err := readEntry(zr, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrCorrupt, name, err)
	}
	return nil
}
