package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadCourses reads the tracked course list: a JSON array of
// display-formatted course ID strings. The list is loaded once at startup; a
// missing or malformed file is a fatal configuration error, and an empty
// list is rejected later by normalization.
func LoadCourses(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read courses file: %w", err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse courses file %s: %w", path, err)
	}
	return raw, nil
}
