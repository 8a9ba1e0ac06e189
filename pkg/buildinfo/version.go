// Package buildinfo holds the version stamped into redactor builds.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/redactor/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/redactor/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/redactor/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/redactor
//
// The web shell shows Version in its footer and reports it on /healthz.
package buildinfo

import "fmt"

// Set at link time. Development builds keep the defaults.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the three values on separate lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the template for "redactor --version".
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
