// Package tui renders query results for a human at a terminal: lipgloss
// styles shared with the CLI's table output, and a bubbletea browser for
// scrolling through large results.
package tui
