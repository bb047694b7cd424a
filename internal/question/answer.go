package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Answer is either a stored correct answer or a learner's submission.
// The set of implementations is closed; switch on the concrete type.
type Answer interface{ isAnswer() }

// IndexAnswer is one option index (single_choice, true_false).
type IndexAnswer int

// IndicesAnswer is a set of option indices (multiple_choice).
type IndicesAnswer []int

// TextAnswer is free text (fill_blank, essay), or the JSON encoding of a
// matching/ordering answer as stored by older authoring tools.
type TextAnswer string

// MappingAnswer maps a left pair index to a right pair index (matching).
type MappingAnswer map[int]int

// SequenceAnswer is an ordered list of item texts (ordering).
type SequenceAnswer []string

// RawAnswer holds a value whose shape was not recognized.
type RawAnswer json.RawMessage

func (IndexAnswer) isAnswer()    {}
func (IndicesAnswer) isAnswer()  {}
func (TextAnswer) isAnswer()     {}
func (MappingAnswer) isAnswer()  {}
func (SequenceAnswer) isAnswer() {}
func (RawAnswer) isAnswer()      {}

func (r RawAnswer) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// ErrAnswerShape is returned when a stored answer cannot be read as the shape its type needs.
var ErrAnswerShape = errors.New("answer has unexpected shape")

// DecodeAnswer reads raw JSON as the answer shape expected for t.
// It does not fail: anything unrecognized is returned as RawAnswer,
// and null or empty input yields nil.
func DecodeAnswer(t Type, raw json.RawMessage) Answer {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var decoders []func(json.RawMessage) (Answer, bool)
	switch t {
	case SingleChoice:
		decoders = []func(json.RawMessage) (Answer, bool){decodeIndex, decodeIndices, decodeText}
	case TrueFalse:
		decoders = []func(json.RawMessage) (Answer, bool){decodeIndex, decodeBool, decodeText}
	case MultipleChoice:
		decoders = []func(json.RawMessage) (Answer, bool){decodeIndices, decodeIndex}
	case FillBlank, Essay:
		decoders = []func(json.RawMessage) (Answer, bool){decodeText}
	case Matching:
		decoders = []func(json.RawMessage) (Answer, bool){decodeMapping, decodeText}
	case Ordering:
		decoders = []func(json.RawMessage) (Answer, bool){decodeSequence, decodeText}
	default:
		decoders = []func(json.RawMessage) (Answer, bool){decodeIndex, decodeIndices, decodeSequence, decodeText, decodeMapping}
	}
	for _, d := range decoders {
		if a, ok := d(raw); ok {
			return a
		}
	}
	return RawAnswer(append([]byte(nil), raw...))
}

func decodeIndex(raw json.RawMessage) (Answer, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, false
	}
	return IndexAnswer(int(f)), true
}

func decodeIndices(raw json.RawMessage) (Answer, bool) {
	var v []int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if v == nil {
		v = []int{}
	}
	return IndicesAnswer(v), true
}

func decodeBool(raw json.RawMessage) (Answer, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, false
	}
	return TrueFalseAnswer(b), true
}

func decodeText(raw json.RawMessage) (Answer, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return TextAnswer(s), true
}

func decodeSequence(raw json.RawMessage) (Answer, bool) {
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if v == nil {
		v = []string{}
	}
	return SequenceAnswer(v), true
}

func decodeMapping(raw json.RawMessage) (Answer, bool) {
	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	out := make(MappingAnswer, len(m))
	for k, v := range m {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// AsMapping resolves a matching answer, decoding the stored JSON form if needed.
func AsMapping(a Answer) (MappingAnswer, error) {
	switch v := a.(type) {
	case MappingAnswer:
		return v, nil
	case TextAnswer:
		m, ok := decodeMapping(json.RawMessage(v))
		if !ok {
			return nil, fmt.Errorf("matching answer %q: %w", string(v), ErrAnswerShape)
		}
		return m.(MappingAnswer), nil
	default:
		return nil, fmt.Errorf("matching answer %T: %w", a, ErrAnswerShape)
	}
}

// AsSequence resolves an ordering answer, decoding the stored JSON form if needed.
func AsSequence(a Answer) (SequenceAnswer, error) {
	switch v := a.(type) {
	case SequenceAnswer:
		return v, nil
	case TextAnswer:
		s, ok := decodeSequence(json.RawMessage(v))
		if !ok {
			return nil, fmt.Errorf("ordering answer %q: %w", string(v), ErrAnswerShape)
		}
		return s.(SequenceAnswer), nil
	default:
		return nil, fmt.Errorf("ordering answer %T: %w", a, ErrAnswerShape)
	}
}

func cloneAnswer(a Answer) Answer {
	switch v := a.(type) {
	case IndicesAnswer:
		return append(IndicesAnswer{}, v...)
	case SequenceAnswer:
		return append(SequenceAnswer{}, v...)
	case MappingAnswer:
		out := make(MappingAnswer, len(v))
		for k, x := range v {
			out[k] = x
		}
		return out
	case RawAnswer:
		return append(RawAnswer{}, v...)
	default:
		return a
	}
}
