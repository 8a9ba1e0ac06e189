// Package document defines the in-memory document a user redacts.
//
// A [Document] is just the text being rendered and the masking intensity.
// It is never persisted; the shells create one from [Sample] at startup and
// replace it on every edit.
package document

// Intensity bounds. Intensity is the probability, in percent, that any given
// non-whitespace token is masked.
const (
	MinIntensity     = 0
	MaxIntensity     = 100
	DefaultIntensity = 40
)

// Document is the text to render together with its masking intensity.
// Intensity is always within [MinIntensity, MaxIntensity] for documents built
// through [New] or the With* methods.
type Document struct {
	Text      string `json:"text"`
	Intensity int    `json:"intensity"`
}

// New returns a document with the intensity clamped into range.
func New(text string, intensity int) Document {
	return Document{Text: text, Intensity: ClampIntensity(intensity)}
}

// Sample returns the document every shell starts with.
func Sample() Document {
	return Document{Text: SampleText, Intensity: DefaultIntensity}
}

// WithText returns a copy of d with its text replaced.
func (d Document) WithText(text string) Document {
	d.Text = text
	return d
}

// WithIntensity returns a copy of d with the intensity clamped into range.
func (d Document) WithIntensity(n int) Document {
	d.Intensity = ClampIntensity(n)
	return d
}

// ClampIntensity pins n to [MinIntensity, MaxIntensity].
func ClampIntensity(n int) int {
	return max(MinIntensity, min(n, MaxIntensity))
}

// SampleText is the memorandum shown on first load.
const SampleText = `MEMORANDUM FOR THE DIRECTOR
SUBJECT: PROJECT NIGHTJAR - STATUS UPDATE (TOP SECRET)

This document confirms that the NIGHTJAR protocol has reached 98% efficiency.
Operation "GHOST CURTAIN" is now active in Sector 4.

SENSITIVE ASSETS:
- Location: 34.0522° N, 118.2437° W (Vault 9)
- Agent Contact: Victor T. at (555) 019-2024
- Network ID: 192.168.1.254

Failure to redact these coordinates before public release will result in 
immediate Level 7 clearance revocation.

REDACTED BY: OFFICE OF THE DIRECTOR`
