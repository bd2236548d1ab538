package testcase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"slecriteria/pkg/platform/sentinel"
)

// Format is a suite document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the suite at path. A missing file wraps
// sentinel.ErrNotFound; undecodable content wraps sentinel.ErrMalformed.
func Load(path string) (Suite, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("suite %s: %w", path, sentinel.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("read suite %s: %w", path, err)
	}
	suite, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, nil, fmt.Errorf("suite %s: %w", path, err)
	}
	return suite, data, nil
}

// Parse decodes a suite document. JSON numbers are kept as json.Number so that
// 5 and 5.0 stay distinguishable.
func Parse(data []byte, format Format) (Suite, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", sentinel.ErrMalformed, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", sentinel.ErrMalformed, err)
		}
		if _, err := dec.Token(); err != io.EOF {
			return nil, fmt.Errorf("%w: trailing data after document", sentinel.ErrMalformed)
		}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be an object", sentinel.ErrMalformed)
	}
	return Suite(obj), nil
}
