//go:build windows

package main

// terminalWidth falls back to $COLUMNS; stdout is assumed to be a console.
func terminalWidth() (int, bool) {
	return columnsEnv(), true
}
