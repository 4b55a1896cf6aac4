package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for simplepg.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped output.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// EnvNonInteractive forces plain output when set to "1".
const EnvNonInteractive = "SIMPLEPG_NON_INTERACTIVE"

// Detector decides the Mode from the environment and the standard streams.
// The zero value is not usable; see DefaultDetector.
type Detector struct {
	Getenv     func(string) string
	IsTerminal func(fd int) bool
	Stdin      *os.File
	Stdout     *os.File
}

// DefaultDetector inspects the real process environment.
func DefaultDetector() Detector {
	return Detector{
		Getenv:     os.Getenv,
		IsTerminal: term.IsTerminal,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
	}
}

// Mode returns ModeNonInteractive if:
//   - SIMPLEPG_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdin or stdout is not a terminal
//
// Returns ModeInteractive otherwise.
func (d Detector) Mode() Mode {
	if d.Getenv(EnvNonInteractive) == "1" {
		return ModeNonInteractive
	}
	if d.Getenv("CI") != "" || d.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	// The result browser needs both a keyboard and a screen.
	if !d.IsTerminal(int(d.Stdin.Fd())) || !d.IsTerminal(int(d.Stdout.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// DetectMode determines whether results may be shown in the interactive browser.
func DetectMode() Mode {
	return DefaultDetector().Mode()
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
