// Package templates holds BDiff's HTML templates, embedded into the
// binary at build time. Adapted from the teacher's templates package:
// same embed.FS + funcMap pattern, repurposed from rendering a raw
// unified diff to rendering a BDiff edit script.
package templates

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/bdiffgo/bdiff/pkg/engine"
)

var (
	funcMap = map[string]any{
		"edit_action_verb": func(m engine.Mode) string {
			return m.String()
		},
		"plus1": func(i int) int { return i + 1 },
		"line_ref": func(srcLine, destLine int) string {
			switch {
			case srcLine > 0 && destLine > 0:
				return fmt.Sprintf("%d → %d", srcLine, destLine)
			case srcLine > 0:
				return fmt.Sprintf("%d → —", srcLine)
			default:
				return fmt.Sprintf("— → %d", destLine)
			}
		},
	}
	Templates = template.Must(
		template.New("").
			Funcs(funcMap).
			ParseFS(templateFS, "*.tmpl"),
	)
	//go:embed *.tmpl
	templateFS embed.FS
)
