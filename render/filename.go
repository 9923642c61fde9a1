package render

import (
	"regexp"
	"strings"
)

var unsafeRun = regexp.MustCompile(`[^a-z0-9]+`)

// Filename turns a diagram name into an export file name with the given
// extension: "Q3 Energy Flow" and "svg" give "q3-energy-flow.svg".
// A blank name exports as "sankey-diagram".
func Filename(name, ext string) string {
	if strings.TrimSpace(name) == "" {
		name = "Sankey Diagram"
	}
	base := unsafeRun.ReplaceAllString(strings.ToLower(name), "-")
	return base + "." + strings.TrimPrefix(ext, ".")
}
