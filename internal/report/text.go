package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/garsync/internal/reconcile"
)

// TextReporter writes human-readable run summaries.
type TextReporter struct {
	Writer io.Writer
}

// Generate renders the run summary as terminal text.
func (r *TextReporter) Generate(sum *reconcile.Summary) error {
	w := &errWriter{w: r.Writer}

	title := "garsync — Registration Summary"
	if sum.Mode == reconcile.ModeDeprovision {
		title = "garsync — Deprovisioning Summary"
	}
	w.println(title)
	w.println(strings.Repeat("=", len(title)))
	w.println("")

	switch {
	case sum.NothingToDo && sum.Mode == reconcile.ModeProvision:
		w.println("No registries found — nothing to do.")
	case sum.NothingToDo:
		w.println("No Artifact Registry registrations found — nothing to remove.")
	case sum.Aborted:
		w.println("Aborted by operator — no registrations were removed.")
	default:
		w.printf("Total:     %d\n", sum.Total)
		w.printf("Succeeded: %d\n", sum.Succeeded)
		w.printf("Failed:    %d\n", sum.Failed)
	}

	if len(sum.Failures) > 0 {
		w.println("")
		w.printf("Failures (%d):\n", len(sum.Failures))
		tw := tabwriter.NewWriter(r.Writer, 0, 4, 2, ' ', 0)
		twe := &errWriter{w: tw}
		twe.printf("REGISTRY\tALIAS\tERROR\n")
		twe.printf("--------\t-----\t-----\n")
		for _, f := range sum.Failures {
			twe.printf("%s\t%s\t%v\n", f.Registry, f.Alias, f.Err)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if twe.err != nil {
			return twe.err
		}
	}

	if sum.Mode == reconcile.ModeDeprovision && sum.Succeeded > 0 {
		w.println("")
		w.println("Note: removed records are hard deleted after 48 hours.")
	}

	if sum.CredentialErr != nil {
		w.println("")
		w.printf("Service account cleanup failed: %v\n", sum.CredentialErr)
	}

	return w.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
