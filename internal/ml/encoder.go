package ml

import (
	"encoding/json"
	"fmt"
	"sort"
)

// LabelEncoder maps status strings to dense integer codes. A code is the
// index of its label in Classes, which is sorted ascending.
type LabelEncoder struct {
	Classes []string `json:"classes"`
	FitID   string   `json:"fit_id"`

	index map[string]int
}

// FitTransform learns the distinct labels and returns their codes in input order.
func FitTransform(labels []string) (*LabelEncoder, []int) {
	seen := make(map[string]struct{}, 2)
	for _, l := range labels {
		seen[l] = struct{}{}
	}

	classes := make([]string, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	enc := &LabelEncoder{Classes: classes}
	enc.index = enc.lookup()

	codes := make([]int, len(labels))
	for i, l := range labels {
		codes[i] = enc.index[l]
	}
	return enc, codes
}

func (e *LabelEncoder) lookup() map[string]int {
	if e.index != nil {
		return e.index
	}
	index := make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		index[c] = i
	}
	return index
}

// Transform encodes labels with the fitted classes.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	index := e.lookup()
	codes := make([]int, len(labels))
	for i, l := range labels {
		code, ok := index[l]
		if !ok {
			return nil, &UnknownLabelError{Label: l, FitID: e.FitID}
		}
		codes[i] = code
	}
	return codes, nil
}

// InverseTransform decodes codes back to labels.
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	labels := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.Classes) {
			return nil, &UnknownCodeError{Code: c, FitID: e.FitID}
		}
		labels[i] = e.Classes[c]
	}
	return labels, nil
}

// NumClasses returns the number of fitted classes.
func (e *LabelEncoder) NumClasses() int { return len(e.Classes) }

// MarshalEncoder serializes the encoder state.
func MarshalEncoder(e *LabelEncoder) ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEncoder restores an encoder written by MarshalEncoder.
func UnmarshalEncoder(data []byte) (*LabelEncoder, error) {
	var e LabelEncoder
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode label encoder: %w", err)
	}
	if len(e.Classes) == 0 {
		return nil, fmt.Errorf("decode label encoder: no classes")
	}
	e.index = e.lookup()
	return &e, nil
}
