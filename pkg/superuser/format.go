package superuser

import "fmt"

// LineAdder receives formatted lines; *paginator.Paginator implements it.
type LineAdder interface {
	AddLine(line string)
}

// Format writes the display lines for o into p.
func Format(p LineAdder, o Outcome) {
	for _, l := range Lines(o) {
		p.AddLine(l)
	}
}

// Lines returns the display lines for o: a header naming the engine, the
// non-empty output streams, and a trailer with the result and elapsed time.
func Lines(o Outcome) []string {
	lines := []string{fmt.Sprintf("---- %s ----", o.Engine)}
	if o.Stdout != "" {
		lines = append(lines, "- /dev/stdout:", o.Stdout)
	}
	if o.Stderr != "" {
		lines = append(lines, "- /dev/stderr:", o.Stderr)
	}
	result := o.Result
	if result == nil {
		result = "undefined"
	}
	lines = append(lines, fmt.Sprintf("+ Returned %v in approx %.2fms", result, o.Elapsed*1000))
	return lines
}
