// Package schema checks the shape of incoming pipeline payloads before they
// reach the graph package. Missing fields and wrong primitive types are
// rejected here; graph-level problems are left to graph.Check.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kaptinlin/jsonschema"

	"pipelinecheck/internal/pipeline/graph"
)

const submissionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "position", "data"],
        "properties": {
          "id": {"type": "string"},
          "type": {"type": "string"},
          "position": {
            "type": "object",
            "additionalProperties": {"type": "number"}
          },
          "data": {"type": "object"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "source", "target"],
        "properties": {
          "id": {"type": "string"},
          "source": {"type": "string"},
          "target": {"type": "string"},
          "sourceHandle": {"type": ["string", "null"]},
          "targetHandle": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

// ShapeError lists why a payload could not be accepted.
type ShapeError struct {
	Details []string
}

func (e *ShapeError) Error() string {
	return "invalid pipeline payload: " + strings.Join(e.Details, "; ")
}

// IsShapeError reports whether err (or anything it wraps) is a ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func submission() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiled, compileErr = compiler.Compile([]byte(submissionSchema))
		if compileErr != nil {
			compileErr = fmt.Errorf("compile submission schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Decode checks raw JSON against the submission schema and converts it into a
// graph.Submission. Shape problems come back as *ShapeError.
func Decode(raw []byte) (graph.Submission, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return graph.Submission{}, &ShapeError{Details: []string{"body: request body is empty"}}
	}
	// encoding/json would turn each invalid byte into U+FFFD and merge
	// distinct ids.
	if !utf8.Valid(raw) {
		return graph.Submission{}, &ShapeError{Details: []string{"body: invalid UTF-8"}}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return graph.Submission{}, &ShapeError{Details: []string{"body: " + err.Error()}}
	}
	if err := validate(doc); err != nil {
		return graph.Submission{}, err
	}

	var sub graph.Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return graph.Submission{}, &ShapeError{Details: []string{"body: " + err.Error()}}
	}
	if sub.Nodes == nil {
		sub.Nodes = []graph.Node{}
	}
	if sub.Edges == nil {
		sub.Edges = []graph.Edge{}
	}
	return sub, nil
}

// DecodeValue is Decode for an already parsed document, such as a YAML file.
func DecodeValue(doc any) (graph.Submission, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return graph.Submission{}, &ShapeError{Details: []string{"body: " + err.Error()}}
	}
	return Decode(raw)
}

func validate(doc any) error {
	s, err := submission()
	if err != nil {
		return err
	}
	result := s.Validate(doc)
	if result.IsValid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors))
	for field, e := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", field, e.Message))
	}
	// Errors is a map; sort so identical payloads get identical responses.
	sort.Strings(details)
	if len(details) == 0 {
		details = append(details, "body: payload does not match the pipeline schema")
	}
	return &ShapeError{Details: details}
}
