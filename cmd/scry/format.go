package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/scry"
)

// formatClassesText formats classes as aligned MODULE / NAME columns.
func formatClassesText(w io.Writer, classes []scry.Class) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tNAME")
	for _, c := range classes {
		fmt.Fprintf(tw, "%s\t%s\n", c.Module, c.Name)
	}
	tw.Flush()
}

// outputResult marshals a CLIResult to stdout as indented JSON.
func outputResult(result CLIResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
