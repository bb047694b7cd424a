package validation

import (
	"fmt"
	"strings"
)

// Stable error codes. Callers branch on these, never on messages.
const (
	CodeQuestionRequired      = "QUESTION_REQUIRED"
	CodeTypeRequired          = "TYPE_REQUIRED"
	CodeUnsupportedType       = "UNSUPPORTED_TYPE"
	CodePointsRange           = "POINTS_RANGE"
	CodeMediaTypeRequired     = "MEDIA_TYPE_REQUIRED"
	CodeInvalidDifficulty     = "INVALID_DIFFICULTY"
	CodeOptionsArrayRequired  = "OPTIONS_ARRAY_REQUIRED"
	CodeInsufficientOptions   = "INSUFFICIENT_OPTIONS"
	CodeTooManyOptions        = "TOO_MANY_OPTIONS"
	CodeEmptyOptions          = "EMPTY_OPTIONS"
	CodeNoCorrectAnswer       = "NO_CORRECT_ANSWER"
	CodeInvalidCorrectAnswer  = "INVALID_CORRECT_ANSWER"
	CodeInvalidAnswerIndex    = "INVALID_ANSWER_INDEX"
	CodeInvalidTrueFalseOpts  = "INVALID_TRUEFALSE_OPTIONS"
	CodeInvalidTrueFalseAns   = "INVALID_TRUEFALSE_ANSWER"
	CodeBlankAnswerRequired   = "BLANK_ANSWER_REQUIRED"
	CodePairsArrayRequired    = "PAIRS_ARRAY_REQUIRED"
	CodeInvalidPairs          = "INVALID_PAIRS"
	CodeMatchingAnswerReq     = "MATCHING_ANSWER_REQUIRED"
	CodeInvalidMatchingIndex  = "INVALID_MATCHING_INDEX"
	CodeInvalidAnswerFormat   = "INVALID_ANSWER_FORMAT"
	CodeEmptyItems            = "EMPTY_ITEMS"
	CodeDuplicateItems        = "DUPLICATE_ITEMS"
	CodeSequenceRequired      = "SEQUENCE_REQUIRED"
	CodeInvalidSequenceItems  = "INVALID_SEQUENCE_ITEMS"
	CodeIncompleteSequence    = "INCOMPLETE_SEQUENCE"
	CodeSequenceLenMismatch   = "SEQUENCE_LENGTH_MISMATCH"
	CodeDuplicateSequenceItem = "DUPLICATE_SEQUENCE_ITEMS"
	CodeNoQuestions           = "NO_QUESTIONS"
)

// Error blocks publishing.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Warning is advisory only.
type Warning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func NewError(field, code, message string) Error {
	return Error{Field: field, Message: message, Code: code}
}

func NewWarning(field, message, suggestion string) Warning {
	return Warning{Field: field, Message: message, Suggestion: suggestion}
}

// Diagnostics is the errors/warnings pair every strategy produces.
type Diagnostics struct {
	Errors   []Error
	Warnings []Warning
}

func (d *Diagnostics) addError(field, code, format string, args ...any) {
	d.Errors = append(d.Errors, NewError(field, code, fmt.Sprintf(format, args...)))
}

func (d *Diagnostics) addWarning(field, suggestion, format string, args ...any) {
	d.Warnings = append(d.Warnings, NewWarning(field, fmt.Sprintf(format, args...), suggestion))
}

// HasErrors reports whether any blocking diagnostic was produced.
func (d Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }

// Combine concatenates diagnostics in argument order. Duplicates are kept.
func Combine(ds ...Diagnostics) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		out.Errors = append(out.Errors, d.Errors...)
		out.Warnings = append(out.Warnings, d.Warnings...)
	}
	return out
}

// withPrefix returns a copy whose fields are nested under prefix.
func (d Diagnostics) withPrefix(prefix string) Diagnostics {
	out := Diagnostics{
		Errors:   make([]Error, len(d.Errors)),
		Warnings: make([]Warning, len(d.Warnings)),
	}
	for i, e := range d.Errors {
		e.Field = prefix + "." + e.Field
		out.Errors[i] = e
	}
	for i, w := range d.Warnings {
		w.Field = prefix + "." + w.Field
		out.Warnings[i] = w
	}
	return out
}

// Result returns the final verdict. Lists are never nil.
func (d Diagnostics) Result() Result {
	r := Result{
		IsValid:  len(d.Errors) == 0,
		Errors:   append([]Error{}, d.Errors...),
		Warnings: append([]Warning{}, d.Warnings...),
	}
	return r
}

// Result is what a validation call returns. IsValid is true iff Errors is empty.
type Result struct {
	IsValid  bool      `json:"isValid"`
	Errors   []Error   `json:"errors"`
	Warnings []Warning `json:"warnings"`
}

// HasCode reports whether any error carries code.
func (r Result) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Err returns nil when the result is valid, otherwise an *Invalid.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return &Invalid{Errors: r.Errors}
}

// Invalid is the error form of a failed validation.
type Invalid struct {
	Errors []Error
}

func (e *Invalid) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Errors))
	for _, x := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", x.Field, x.Message, x.Code))
	}
	return "question validation failed: " + strings.Join(parts, "; ")
}
