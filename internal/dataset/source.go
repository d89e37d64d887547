package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/regionplot/internal/table"
)

//go:embed schema.cue
var schemaSource string

// Source yields a cross-tabulated table.
type Source interface {
	// Name identifies the source in logs and status messages.
	Name() string

	// Load reads and decodes the table.
	Load(ctx context.Context) (table.CrossTab, error)
}

// Format is an encoding a dataset can be stored in.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", &LoadError{
		Code:    ErrCodeUnsupportedFormat,
		Message: fmt.Sprintf("unsupported dataset extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path)),
	}
}

// File returns a Source reading path. The format follows the extension.
func File(path string) Source {
	return fileSource{path: path}
}

type fileSource struct {
	path string
}

func (s fileSource) Name() string { return s.path }

func (s fileSource) Load(ctx context.Context) (table.CrossTab, error) {
	if err := ctx.Err(); err != nil {
		return table.CrossTab{}, err
	}

	format, err := FormatFromPath(s.path)
	if err != nil {
		return table.CrossTab{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return table.CrossTab{}, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("reading dataset: %v", err),
		}
	}

	return Decode(format, s.path, data)
}

// Decode parses data in the given format. name is used in error positions.
func Decode(format Format, name string, data []byte) (table.CrossTab, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON:
		return decodeJSON(data)
	case FormatCUE:
		return decodeCUE(name, data)
	}
	return table.CrossTab{}, &LoadError{
		Code:    ErrCodeUnsupportedFormat,
		Message: fmt.Sprintf("unsupported dataset format %q", format),
	}
}

func decodeYAML(data []byte) (table.CrossTab, error) {
	var t table.CrossTab
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&t); err != nil {
		return table.CrossTab{}, &LoadError{
			Code:    ErrCodeDecodeFailed,
			Message: fmt.Sprintf("failed to parse YAML: %v", err),
		}
	}
	return t, nil
}

func decodeJSON(data []byte) (table.CrossTab, error) {
	var t table.CrossTab
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&t); err != nil {
		return table.CrossTab{}, &LoadError{
			Code:    ErrCodeDecodeFailed,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
		}
	}
	return t, nil
}

// decodeCUE builds the file, unifies it with #CrossTab and decodes the
// concrete result through its JSON form.
func decodeCUE(name string, data []byte) (table.CrossTab, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return table.CrossTab{}, cueLoadError(ErrCodeGeneric, err)
	}

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return table.CrossTab{}, cueLoadError(ErrCodeBuildFailed, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#CrossTab")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return table.CrossTab{}, cueLoadError(ErrCodeSchema, err)
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return table.CrossTab{}, cueLoadError(ErrCodeSchema, err)
	}

	t, err := decodeJSON(raw)
	if err != nil {
		return table.CrossTab{}, err
	}
	return t, nil
}
