// Package pkg provides the core libraries for Redactor.
//
// # Overview
//
// Redactor lays plain text out on a fixed-size classified-document page,
// blacks out a random share of its words, and encodes the page as an image.
// The pkg directory is organized into these areas:
//
//  1. [document] - The document being edited (text + intensity)
//  2. [render] - Layout, masking, drawing, and encoding
//  3. [pipeline] - Orchestration (layout → render) with caching
//  4. [shell] - UI state and transitions shared by the terminal and web shells
//  5. [packager] - The deployment archive for the web shell
//  6. [blob] - Destinations for produced files
//  7. Infrastructure - [cache], [session], [config], [httputil], [observability]
//
// # Architecture
//
// The typical data flow through Redactor:
//
//	Document (text, intensity)
//	         ↓
//	    [render/layout] package (tokenize, wrap, decide masks)
//	         ↓
//	    [render/sink] package (draw the page)
//	         ↓
//	    JPEG/PNG/JSON output
//	         ↓
//	    [blob] sink (file, HTTP download, memory)
//
// # Quick Start
//
// Render a page with a fixed mask pattern:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/redactor/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    Text:      "SECRET LOCATION",
//	    Intensity: 100,
//	    Seed:      42,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("redacted_intel.jpg", res.Artifact, 0644)
//
// # Determinism
//
// Masking draws from a seeded PCG generator. The same text, intensity, and
// seed always produce the same layout; only the footer timestamp differs
// between renders. Intensity 0 never masks and 100 always masks, whatever
// the seed.
package pkg
