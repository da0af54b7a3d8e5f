package todo

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// PayloadKind names a response body shape that can be schema-checked.
type PayloadKind string

const (
	PayloadUsers PayloadKind = "users"
	PayloadTasks PayloadKind = "tasks"
	PayloadTask  PayloadKind = "task"
)

const schemaBaseURL = "https://todolist.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[PayloadKind]*jsonschema.Schema
	schemaErr  error
)

func compileSchemas() (map[PayloadKind]*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true

		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemaErr = fmt.Errorf("read embedded schemas: %w", err)
			return
		}
		for _, entry := range entries {
			data, err := schemaFS.ReadFile("schemas/" + entry.Name())
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", entry.Name(), err)
				return
			}
			if err := compiler.AddResource(schemaBaseURL+entry.Name(), bytes.NewReader(data)); err != nil {
				schemaErr = fmt.Errorf("add schema %s: %w", entry.Name(), err)
				return
			}
		}

		compiled := make(map[PayloadKind]*jsonschema.Schema, 3)
		for _, kind := range []PayloadKind{PayloadUsers, PayloadTasks, PayloadTask} {
			s, err := compiler.Compile(schemaBaseURL + string(kind) + ".schema.json")
			if err != nil {
				schemaErr = fmt.Errorf("compile %s schema: %w", kind, err)
				return
			}
			compiled[kind] = s
		}
		schemas = compiled
	})
	return schemas, schemaErr
}

// ValidatePayload checks a raw response body against the embedded schema for
// kind. Schema violations come back as a *PayloadError listing every cause.
func ValidatePayload(kind PayloadKind, data []byte) error {
	compiled, err := compileSchemas()
	if err != nil {
		return err
	}
	schema, ok := compiled[kind]
	if !ok {
		return fmt.Errorf("unknown payload kind %q", kind)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	if err := schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		perr := &PayloadError{Kind: kind}
		collectSchemaErrors(perr, ve)
		return perr
	}
	return nil
}

// PayloadError reports every schema violation found in one payload.
type PayloadError struct {
	Kind   PayloadKind
	Errors []*ValidationError
}

func (e *PayloadError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		parts = append(parts, ve.Error())
	}
	return fmt.Sprintf("invalid %s payload: %s", e.Kind, strings.Join(parts, "; "))
}

func collectSchemaErrors(result *PayloadError, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath converts "/0/title" into "[0].title".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
