// Package secrets resolves provider credentials, such as the Gemini API
// key, from files or inline configuration values.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a credential comes from.
type Source struct {
	// Name labels the credential in error messages, e.g. "gemini api key".
	Name string
	// Value is an inline credential from configuration or flags.
	Value string
	// File points to a file holding the credential. When set it takes
	// precedence over Value; keys are expected in files so they stay out
	// of shell history and config dumps.
	File string
}

// Load resolves the credential from src, trimming surrounding whitespace
// so trailing newlines in key files are harmless. An error is returned
// when neither File nor Value yield a non-empty credential.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "credential"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
