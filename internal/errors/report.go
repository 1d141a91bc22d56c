package errors

import (
	"encoding/json"
	goerrors "errors"

	"github.com/dmzlang/dmzc/internal/token"
)

// Report is the canonical structured diagnostic type produced by every
// phase. Builders return *Report; callers wrap it with WrapReport to
// hand it back through ordinary Go error-returning signatures.
type Report struct {
	Code    string         `json:"code"`           // e.g. "PAR001"
	Phase   string         `json:"phase"`          // "parser", "resolve", "cfg", ...
	Message string         `json:"message"`        // human-readable message
	Pos     token.Pos      `json:"pos"`             // source location
	Data    map[string]any `json:"data,omitempty"` // structured detail
	Fix     *Fix           `json:"fix,omitempty"`  // suggested fix, if any
}

// Fix is a suggested textual fix attached to a Report.
type Fix struct {
	Suggestion string `json:"suggestion"`
}

// ReportError wraps a Report so it survives errors.As() unwrapping
// through ordinary Go error-handling code.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Pos.String() + ": " + e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts the *Report carried by err, if any.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if goerrors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps r as an error. Returns nil if r is nil.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for code at pos with message, with no extra data.
func New(code, phase string, pos token.Pos, message string) *Report {
	return &Report{Code: code, Phase: phase, Message: message, Pos: pos}
}

// WithData attaches structured detail to a Report and returns it.
func (r *Report) WithData(data map[string]any) *Report {
	r.Data = data
	return r
}

// WithFix attaches a suggested fix to a Report and returns it.
func (r *Report) WithFix(suggestion string) *Report {
	r.Fix = &Fix{Suggestion: suggestion}
	return r
}

// ToJSON renders r as JSON, indented unless compact is true.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
