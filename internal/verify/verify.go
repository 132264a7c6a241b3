// Package verify checks that a pipeline directory holds every declared
// notebook and supporting file before a run.
package verify

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flarebyte/smfish-pipeline/internal/stage"
)

// Item is a path expected under the pipeline root.
type Item struct {
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description" yaml:"description"`
}

// Section groups items under a heading.
type Section struct {
	Title string
	Items []Item
}

// CheckResult is the outcome of one item check.
type CheckResult struct {
	Section string
	Item    Item
	Present bool
}

// Report summarizes a verification run.
type Report struct {
	Checks       []CheckResult
	Notebooks    []string
	MinNotebooks int
}

// Missing returns the items that were not found.
func (r Report) Missing() []Item {
	var out []Item
	for _, c := range r.Checks {
		if !c.Present {
			out = append(out, c.Item)
		}
	}
	return out
}

// StructureOK reports whether every checked item exists.
func (r Report) StructureOK() bool {
	return len(r.Missing()) == 0
}

// OK reports whether the structure is complete and enough notebooks exist.
func (r Report) OK() bool {
	return r.StructureOK() && len(r.Notebooks) >= r.MinNotebooks
}

// Sections builds the checklist: required files first, one section per
// stage with its units, then the result directories.
func Sections(stages []stage.Stage, required, dirs []Item) []Section {
	var out []Section
	if len(required) > 0 {
		out = append(out, Section{Title: "Main Pipeline Files", Items: required})
	}
	for _, s := range stages {
		sec := Section{Title: sectionTitle(s.Name) + " Notebooks"}
		for _, u := range s.Units {
			sec.Items = append(sec.Items, Item{Path: u, Description: unitDescription(u)})
		}
		out = append(out, sec)
	}
	if len(dirs) > 0 {
		out = append(out, Section{Title: "Results Directory", Items: dirs})
	}
	return out
}

func sectionTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func unitDescription(unit string) string {
	base := filepath.Base(filepath.FromSlash(unit))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Options tunes Run.
type Options struct {
	MinNotebooks int
	NoGitignore  bool
}

// Run checks every section item under root, counts notebooks and writes a
// human-readable report to w.
func Run(root string, sections []Section, opts Options, w io.Writer) (Report, error) {
	rep := Report{MinNotebooks: opts.MinNotebooks}
	printf := func(format string, args ...any) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	printf("=== PIPELINE INTEGRATION VERIFICATION ===\n")
	for i, sec := range sections {
		printf("\n%d. %s:\n", i+1, sec.Title)
		for _, it := range sec.Items {
			present := exists(root, it.Path)
			rep.Checks = append(rep.Checks, CheckResult{Section: sec.Title, Item: it, Present: present})
			if present {
				printf("✓ %s: %s\n", it.Description, it.Path)
			} else {
				printf("✗ MISSING %s: %s\n", it.Description, it.Path)
			}
		}
	}

	printf("\n%s\n", strings.Repeat("=", 50))
	if rep.StructureOK() {
		printf("🎉 VERIFICATION SUCCESSFUL!\n")
		printf("All pipeline components are properly integrated.\n")
	} else {
		printf("❌ VERIFICATION FAILED!\n")
		printf("Some components are missing. Please check the errors above.\n")
	}

	notebooks, err := FindNotebooks(root, opts.NoGitignore)
	if err != nil {
		return rep, fmt.Errorf("count notebooks: %w", err)
	}
	rep.Notebooks = notebooks
	printf("\nTotal notebooks in pipeline: %d\n", len(notebooks))
	printf("Expected: at least %d\n", opts.MinNotebooks)

	if rep.OK() {
		printf("\n✅ Integration verification completed successfully!\n")
	} else {
		printf("\n⚠️  Integration verification found issues.\n")
	}
	return rep, nil
}

func exists(root, p string) bool {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(p))
	}
	_, err := os.Stat(p)
	return err == nil
}
