package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarebyte/smfish-pipeline/cli"
)

func TestSummary(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	oldCliV, oldCliD := cli.Version, cli.Date
	t.Cleanup(func() {
		Version, Commit, Date = oldV, oldC, oldD
		cli.Version, cli.Date = oldCliV, oldCliD
	})

	Version, Commit, Date = "", "", ""
	cli.Version, cli.Date = "", ""
	assert.Equal(t, "dev", Summary())

	cli.Version, cli.Date = "0.3.0", "2026-10-18"
	assert.Equal(t, "0.3.0 (date=2026-10-18)", Summary())

	Version, Commit = "1.0.0", "0123456789"
	assert.Equal(t, "1.0.0 (commit=0123456, date=2026-10-18)", Summary())
}
