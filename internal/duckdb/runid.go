package duckdb

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	runIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	runIDLength   = 12
)

// NewRunID returns a short random id tagging the rows of one run.
func NewRunID() (string, error) {
	id, err := nanoid.Generate(runIDAlphabet, runIDLength)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return "run-" + id, nil
}
