package ui

import (
	"os/exec"
	"strings"
)

// banner generates the deckhand wordmark shown on the login screen. Uses
// figlet when available, otherwise a plain fallback. The caller applies color.
func banner() string {
	cmd := exec.Command("figlet", "-f", "slant", "deckhand")
	output, err := cmd.Output()
	if err == nil && len(output) > 0 {
		return strings.TrimRight(string(output), "\n")
	}

	return "D E C K H A N D"
}
