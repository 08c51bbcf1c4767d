package main

import (
	"fmt"
	"io"
	"os"
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorCyan, colorGray, colorBold = "", "", ""
}

// printer writes status lines. Quiet suppresses success and info lines.
type printer struct {
	out   io.Writer
	quiet bool
}

func (p printer) success(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintf(p.out, "%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func (p printer) error(format string, args ...any) {
	fmt.Fprintf(p.out, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func (p printer) warning(format string, args ...any) {
	fmt.Fprintf(p.out, "%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func (p printer) info(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintf(p.out, "%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

// result prints an action's text output.
func (p printer) result(text string) {
	fmt.Fprintf(p.out, "%s\n", text)
}

func (p printer) heading(format string, args ...any) {
	fmt.Fprintf(p.out, "%s%s%s\n", colorBold, fmt.Sprintf(format, args...), colorReset)
}
