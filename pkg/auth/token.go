package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PasteCredential prompts for a secret on r and returns the trimmed value.
// Used by the auth command to capture tokens without putting them on the
// command line.
func PasteCredential(label string, r io.Reader) (string, error) {
	fmt.Printf("Paste your %s:\n", label)
	fmt.Print("> ")

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading %s: %w", label, err)
		}
		return "", errors.New("no input received")
	}

	value := strings.TrimSpace(scanner.Text())
	if value == "" {
		return "", fmt.Errorf("%s cannot be empty", label)
	}
	return value, nil
}
