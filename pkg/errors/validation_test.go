package errors

import (
	"strings"
	"testing"
)

func TestValidateIntensity(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"zero", 0, false},
		{"mid", 40, false},
		{"full", 100, false},
		{"negative", -1, true},
		{"over", 101, true},
		{"far over", 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIntensity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIntensity(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidIntensity) {
				t.Errorf("ValidateIntensity(%d) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidIntensity)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"plain", "SECRET LOCATION", false},
		{"multiline", "line one\nline two\r\n\tindented", false},
		{"unicode", "34.0522° N, 118.2437° W", false},
		{"form feed", "page one\n\fpage two", false},
		{"vertical tab", "\v \v", false},
		{"next line", "a\u0085b", false},
		{"null byte", "foo\x00bar", true},
		{"bell", "foo\x07bar", true},
		{"too long", strings.Repeat("a", MaxTextLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuality(t *testing.T) {
	for _, q := range []int{1, 90, 100} {
		if err := ValidateQuality(q); err != nil {
			t.Errorf("ValidateQuality(%d) unexpected error: %v", q, err)
		}
	}
	for _, q := range []int{0, -5, 101} {
		if err := ValidateQuality(q); err == nil {
			t.Errorf("ValidateQuality(%d) expected error", q)
		}
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"jpeg", "redacted_intel.jpg", false},
		{"zip", "redactor-files-to-upload.zip", false},
		{"metadata", "metadata.json", false},

		{"empty", "", true},
		{"with path /", "path/to/file", true},
		{"with path \\", "path\\to\\file", true},
		{"parent", "..", true},
		{"hidden file", ".hidden", true},
		{"control char", "foo\x01.jpg", true},
		{"too long", strings.Repeat("a", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"http", "http://localhost:8080/source/app.html", false},
		{"https", "https://example.com/app.html", false},
		{"empty", "", true},
		{"file scheme", "file:///etc/passwd", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
