package cli

// Version and Date should be set at build time using ldflags, e.g.:
//
//	-ldflags "-X 'github.com/flarebyte/smfish-pipeline/cli.Version=0.3.0' -X 'github.com/flarebyte/smfish-pipeline/cli.Date=2026-10-18'"
var (
	Version string
	Date    string
)
