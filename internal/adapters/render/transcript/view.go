package transcript

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/bnema/hfss-client/internal/ports"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	// MaxArgsWidth truncates the argument list of each call. Zero keeps it whole.
	MaxArgsWidth int
	// Result, when set, is summarised after the transcript.
	Result *application.ScriptResult
	// ResultOnly drops the transcript and prints only Result.
	ResultOnly bool
}

func renderView(calls []ports.CallRecord, opts RenderOptions, s styles) string {
	if opts.ResultOnly && opts.Result != nil {
		return resultView(*opts.Result, s)
	}

	failed := 0
	for _, c := range calls {
		if c.Err != nil {
			failed++
		}
	}

	lines := []string{
		s.title.Render("Host transcript"),
		s.header.Render(fmt.Sprintf("calls: %d, failed: %d", len(calls), failed)),
	}

	if len(calls) == 0 {
		lines = append(lines, s.empty.Render("No host calls were made."))
	} else {
		width := len(strconv.Itoa(len(calls)))
		body := make([]string, 0, len(calls))
		for i, c := range calls {
			body = append(body, callLine(i+1, width, c, opts, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))
	}

	if opts.Result != nil {
		lines = append(lines, s.section.Render(resultView(*opts.Result, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func callLine(n, width int, c ports.CallRecord, opts RenderOptions, s styles) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = FormatArg(a)
	}
	joined := truncate(strings.Join(args, ", "), opts.MaxArgsWidth)

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.index.Render(fmt.Sprintf("%*d ", width, n)),
		s.target.Render(string(c.Target)),
		".",
		s.method.Render(c.Method),
		s.args.Render("("+joined+")"),
	)

	if c.Err != nil {
		line += " " + s.failure.Render("! "+c.Err.Error())
	}
	return line
}

func resultView(r application.ScriptResult, s styles) string {
	parts := []string{s.title.Render("Result")}

	ids := make([]string, 0, len(r.Objects))
	for id := range r.Objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		parts = append(parts, s.key.Render("$"+id+" ")+s.value.Render(r.Objects[id]))
	}

	for _, name := range r.Saved {
		parts = append(parts, s.key.Render("saved ")+s.value.Render(name))
	}

	names := make([]string, 0, len(r.Values))
	for name := range r.Values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		parts = append(parts, s.key.Render(name+" = ")+s.value.Render(strconv.FormatFloat(r.Values[name], 'g', -1, 64)))
	}

	if len(parts) == 1 {
		parts = append(parts, s.empty.Render("nothing produced"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// FormatArg prints an automation argument in the host's script syntax.
func FormatArg(a any) string {
	switch v := a.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = FormatArg(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
