package question

import (
	"bytes"
	"encoding/json"
)

// Options holds the option list of a question. The set of implementations is closed.
type Options interface{ isOptions() }

// TextOptions are the option texts of choice and ordering questions.
type TextOptions []string

// PairOptions are the pairs of a matching question.
type PairOptions []Pair

// RawOptions holds an options value whose shape was not recognized.
type RawOptions json.RawMessage

type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

func (TextOptions) isOptions() {}
func (PairOptions) isOptions() {}
func (RawOptions) isOptions()  {}

func (r RawOptions) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// DecodeOptions reads raw JSON as the options shape expected for t.
// Like DecodeAnswer it never fails.
func DecodeOptions(t Type, raw json.RawMessage) Options {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if t == Matching {
		if p, ok := decodePairs(raw); ok {
			return p
		}
		if s, ok := decodeTexts(raw); ok {
			return s
		}
	} else {
		if s, ok := decodeTexts(raw); ok {
			return s
		}
		if p, ok := decodePairs(raw); ok {
			return p
		}
	}
	return RawOptions(append([]byte(nil), raw...))
}

func decodeTexts(raw json.RawMessage) (TextOptions, bool) {
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if v == nil {
		v = []string{}
	}
	return TextOptions(v), true
}

func decodePairs(raw json.RawMessage) (PairOptions, bool) {
	var v []Pair
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if v == nil {
		v = []Pair{}
	}
	return PairOptions(v), true
}

// Len is the number of options regardless of their shape; RawOptions count as zero.
func Len(o Options) int {
	switch v := o.(type) {
	case TextOptions:
		return len(v)
	case PairOptions:
		return len(v)
	}
	return 0
}

func cloneOptions(o Options) Options {
	switch v := o.(type) {
	case TextOptions:
		return append(TextOptions{}, v...)
	case PairOptions:
		return append(PairOptions{}, v...)
	case RawOptions:
		return append(RawOptions{}, v...)
	}
	return o
}
