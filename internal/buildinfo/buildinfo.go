// Package buildinfo exposes version metadata for smfish. Values can be set
// at build time via -ldflags; the cli package values are used as fallback
// for release scripts that only know about cli.Version and cli.Date.
package buildinfo

import (
	"strings"

	"github.com/flarebyte/smfish-pipeline/cli"
)

var (
	// Version falls back to cli.Version, then "dev".
	Version = ""
	Commit  = ""
	// Date falls back to cli.Date.
	Date    = ""
	BuiltBy = ""
)

// Summary returns a concise single-line version string.
func Summary() string {
	v := Version
	if v == "" {
		v = cli.Version
	}
	if v == "" {
		v = "dev"
	}

	d := Date
	if d == "" {
		d = cli.Date
	}

	var parts []string
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
