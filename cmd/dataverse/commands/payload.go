package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dataverse/internal/constants"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

// loadPayload reads record data from an inline --data value or a --file
// path. Files ending in .yaml or .yml are read as YAML, anything else as
// JSON. Inline data is tried as JSON first, then YAML.
func loadPayload(data, file string) (dataverse.Record, error) {
	switch {
	case data != "" && file != "":
		return nil, constants.ErrDataAndFileExcluded
	case data == "" && file == "":
		return nil, constants.ErrDataRequired
	case file != "":
		return loadPayloadFile(file)
	}

	var record dataverse.Record

	err := json.Unmarshal([]byte(data), &record)
	if err == nil && record != nil {
		return record, nil
	}

	return decodeYAMLPayload([]byte(data))
}

func loadPayloadFile(path string) (dataverse.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	// #nosec G304 -- the path is supplied by the user on purpose
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLPayload(content)
	}

	var record dataverse.Record

	err = json.Unmarshal(content, &record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidPayload, err)
	}

	if record == nil {
		return nil, constants.ErrInvalidPayload
	}

	return record, nil
}

func decodeYAMLPayload(content []byte) (dataverse.Record, error) {
	var record dataverse.Record

	err := yaml.Unmarshal(content, &record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidPayload, err)
	}

	if record == nil {
		return nil, constants.ErrInvalidPayload
	}

	return record, nil
}
