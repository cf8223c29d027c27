// Package codec decodes bridge requests and encodes bridge responses.
//
// Decoding never panics and never returns a Go error: malformed input becomes
// a *Failure that is itself encodable. Encoding repairs invalid UTF-8 with
// U+FFFD instead of failing the whole response.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// DefaultSource is used when a request omits sourceLanguage or sets it to null.
const DefaultSource = "auto"

const (
	MsgNoInput           = "No input received"
	MsgInvalidJSON       = "Invalid JSON"
	MsgMissingFields     = "text and targets required"
	MsgEngineUnavailable = "Translation engine unavailable"
	MsgUnhandled         = "Unhandled error"
	MsgTimeout           = "Translation timeout"
)

// Request is a decoded translation request.
type Request struct {
	Text           string   `json:"text"`
	SourceLanguage string   `json:"sourceLanguage"`
	Targets        []string `json:"targets"`
}

// Result is the success response.
type Result struct {
	Success      bool              `json:"success"`
	UsedSource   string            `json:"usedSource"`
	Translations map[string]string `json:"translations"`
	Errors       map[string]string `json:"errors"`
}

// NewResult returns an empty success response for usedSource.
func NewResult(usedSource string) *Result {
	return &Result{
		Success:      true,
		UsedSource:   usedSource,
		Translations: make(map[string]string),
		Errors:       make(map[string]string),
	}
}

// Failure is the structured failure response. It doubles as an error.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// NewFailure returns a failure response with optional details.
func NewFailure(message, details string) *Failure {
	return &Failure{Message: message, Details: details}
}

func (f *Failure) Error() string {
	if f.Details == "" {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Message, f.Details)
}

// Decode parses raw request bytes. Duplicate targets are dropped, keeping the
// first occurrence. A sourceLanguage that is present as a string, even an
// empty one, is kept verbatim.
func Decode(raw []byte) (*Request, *Failure) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, NewFailure(MsgNoInput, "")
	}

	if !utf8.Valid(raw) {
		return nil, NewFailure(MsgInvalidJSON, "request is not valid UTF-8")
	}

	if !gjson.ValidBytes(raw) {
		var v any
		details := "malformed JSON document"
		if err := json.Unmarshal(raw, &v); err != nil {
			details = err.Error()
		}
		return nil, NewFailure(MsgInvalidJSON, details)
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, NewFailure(MsgInvalidJSON, "request must be a JSON object")
	}

	req := &Request{SourceLanguage: DefaultSource}

	text := doc.Get("text")
	if text.Type != gjson.String || text.Str == "" {
		return nil, NewFailure(MsgMissingFields, "")
	}
	req.Text = text.Str

	targets := doc.Get("targets")
	if !targets.IsArray() {
		return nil, NewFailure(MsgMissingFields, "")
	}
	seen := make(map[string]struct{})
	for i, t := range targets.Array() {
		if t.Type != gjson.String {
			return nil, NewFailure(MsgMissingFields, fmt.Sprintf("targets[%d] is not a string", i))
		}
		if _, dup := seen[t.Str]; dup {
			continue
		}
		seen[t.Str] = struct{}{}
		req.Targets = append(req.Targets, t.Str)
	}
	if len(req.Targets) == 0 {
		return nil, NewFailure(MsgMissingFields, "")
	}

	switch src := doc.Get("sourceLanguage"); src.Type {
	case gjson.Null:
		// absent or null
	case gjson.String:
		req.SourceLanguage = src.Str
	default:
		return nil, NewFailure(MsgInvalidJSON, "sourceLanguage must be a string")
	}

	return req, nil
}

// Encode writes v as a single JSON object followed by a newline. HTML
// characters are not escaped.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(sanitize(v))
}

func sanitize(v any) any {
	switch r := v.(type) {
	case *Result:
		out := NewResult(valid(r.UsedSource))
		for k, t := range r.Translations {
			out.Translations[valid(k)] = valid(t)
		}
		for k, e := range r.Errors {
			out.Errors[valid(k)] = valid(e)
		}
		return out
	case *Failure:
		return &Failure{
			Message: valid(r.Message),
			Details: valid(r.Details),
			Trace:   valid(r.Trace),
		}
	default:
		return v
	}
}

func valid(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
