package labels

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLabel is returned when a label was not seen during Fit.
	ErrUnknownLabel = errors.New("labels: unknown label")
	// ErrUnknownKey is returned when a key is outside the fitted range.
	ErrUnknownKey = errors.New("labels: unknown key")
)

// KeyMap maps label strings to dense integer keys and back. Keys are
// assigned in order of first occurrence. A KeyMap is immutable after Fit.
type KeyMap struct {
	toKey   map[string]int
	toLabel []string
}

// Fit learns the key mapping from the training labels.
func Fit(values []string) *KeyMap {
	m := &KeyMap{toKey: make(map[string]int)}
	for _, v := range values {
		if _, ok := m.toKey[v]; ok {
			continue
		}
		m.toKey[v] = len(m.toLabel)
		m.toLabel = append(m.toLabel, v)
	}
	return m
}

// FromLabels rebuilds a KeyMap from an ordered label list, where the slice
// index is the key.
func FromLabels(ordered []string) (*KeyMap, error) {
	m := &KeyMap{toKey: make(map[string]int, len(ordered))}
	for i, v := range ordered {
		if _, ok := m.toKey[v]; ok {
			return nil, fmt.Errorf("labels: duplicate label %q at key %d", v, i)
		}
		m.toKey[v] = i
	}
	m.toLabel = append([]string(nil), ordered...)
	return m, nil
}

// Key returns the key for label.
func (m *KeyMap) Key(label string) (int, error) {
	k, ok := m.toKey[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return k, nil
}

// Keys encodes a column of labels.
func (m *KeyMap) Keys(values []string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		k, err := m.Key(v)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}

// Label decodes key back to its label string.
func (m *KeyMap) Label(key int) (string, error) {
	if key < 0 || key >= len(m.toLabel) {
		return "", fmt.Errorf("%w: %d (have %d)", ErrUnknownKey, key, len(m.toLabel))
	}
	return m.toLabel[key], nil
}

// Len returns the number of distinct labels.
func (m *KeyMap) Len() int { return len(m.toLabel) }

// Labels returns the labels ordered by key.
func (m *KeyMap) Labels() []string {
	return append([]string(nil), m.toLabel...)
}
