// Package detector guesses the language of a text. The bridge uses it only as
// an optional hint when a request leaves its source language to "auto".
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minHintLength is the rune count below which detection is not attempted.
const minHintLength = 12

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over every language lingua knows. Building is
// expensive; reuse the instance.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of text's language, the
// form installed-model registries use.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Hint returns a source hint for text, or "" when the text is too short to
// judge or its language is ambiguous.
func (d *Detector) Hint(text string) string {
	if len([]rune(strings.TrimSpace(text))) < minHintLength {
		return ""
	}
	code, ok := d.DetectISO(text)
	if !ok {
		return ""
	}
	return code
}
