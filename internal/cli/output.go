package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/status"
)

// colorScheme holds the colors used for terminal output.
type colorScheme struct {
	Method      *color.Color
	URL         *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	ErrorCode   *color.Color
	Faint       *color.Color
}

func newColorScheme(noColor bool) *colorScheme {
	s := &colorScheme{
		Method:      color.New(color.FgBlue, color.Bold),
		URL:         color.New(color.FgCyan),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		ErrorCode:   color.New(color.FgMagenta, color.Bold),
		Faint:       color.New(color.Faint),
	}
	// Explicit either way: the package default follows os.Stdout only.
	for _, c := range []*color.Color{s.Method, s.URL, s.StatusOK, s.StatusWarn, s.StatusError, s.ErrorCode, s.Faint} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return s
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printer renders requests, responses and errors.
type printer struct {
	out     io.Writer
	errOut  io.Writer
	colors  *colorScheme
	verbose bool
}

func newPrinter(out, errOut io.Writer, noColor, verbose bool) *printer {
	if !isTerminal(out) {
		noColor = true
	}
	return &printer{out: out, errOut: errOut, colors: newColorScheme(noColor), verbose: verbose}
}

func (p *printer) request(method, url string) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.errOut, "> %s %s\n", p.colors.Method.Sprint(method), p.colors.URL.Sprint(url))
}

// status prints the status line of the final response.
func (p *printer) status(ex exchange) {
	if ex.StatusCode == 0 {
		return
	}
	c := p.colors.StatusOK
	switch class, err := status.Classify(ex.StatusCode); {
	case err != nil, class.IsError():
		c = p.colors.StatusError
	case class != status.Successful:
		c = p.colors.StatusWarn
	}
	line := fmt.Sprintf("%d %s", ex.StatusCode, ex.Reason)
	fmt.Fprintf(p.errOut, "< %s %s\n", c.Sprint(strings.TrimSpace(line)),
		p.colors.Faint.Sprintf("(%dms)", ex.Duration.Milliseconds()))
	if p.verbose {
		for _, k := range sortedKeys(ex.Header) {
			fmt.Fprintf(p.errOut, "< %s: %s\n", k, strings.Join(ex.Header[k], ", "))
		}
	}
}

// body prints a decoded result: text as is, everything else as indented JSON.
func (p *printer) body(v any) error {
	switch b := v.(type) {
	case nil:
		return nil
	case string:
		return p.line(b)
	case []byte:
		return p.line(string(b))
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Serialization("formatting response", err)
	}
	return p.line(string(out))
}

func (p *printer) line(s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(p.out, s)
	return err
}

// failure prints err with its kind. HTTP errors also print the response content.
func (p *printer) failure(err error) {
	re, ok := errors.AsRestError(err)
	if !ok {
		fmt.Fprintf(p.errOut, "%s %v\n", p.colors.StatusError.Sprint("error:"), err)
		return
	}
	fmt.Fprintf(p.errOut, "%s %s\n", p.colors.ErrorCode.Sprint(re.Code), re.Error())
	if len(re.Content) > 0 {
		fmt.Fprintln(p.errOut, strings.TrimRight(string(re.Content), "\n"))
	}
}

func (p *printer) health(sh *observability.ServiceHealth) {
	fmt.Fprintf(p.out, "%s %s %s\n", sh.Service, sh.Version, p.healthStatus(sh.Status))
	for _, h := range sh.Components {
		line := fmt.Sprintf("  %-20s %s", h.Name, p.healthStatus(h.Status))
		if h.Message != "" {
			line += " " + p.colors.Faint.Sprint(h.Message)
		}
		fmt.Fprintln(p.out, line)
	}
}

func (p *printer) healthStatus(s component.HealthStatus) string {
	switch s {
	case component.StatusHealthy:
		return p.colors.StatusOK.Sprint(s)
	case component.StatusDegraded:
		return p.colors.StatusWarn.Sprint(s)
	default:
		return p.colors.StatusError.Sprint(s)
	}
}

// exchange is the raw outcome of the last dispatched request.
type exchange struct {
	StatusCode int
	Reason     string
	Header     map[string][]string
	Duration   time.Duration
}
