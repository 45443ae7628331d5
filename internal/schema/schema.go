// Package schema validates outline results against the published JSON schema.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed outline.schema.json
var outlineSchema []byte

const schemaURL = "outline.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Source returns the raw JSON schema document.
func Source() []byte {
	return append([]byte(nil), outlineSchema...)
}

func load() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(outlineSchema)); err != nil {
			compileErr = fmt.Errorf("load outline schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile outline schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks that res serialises to a document matching the schema.
func Validate(res doctree.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return ValidateJSON(raw)
}

// ValidateJSON validates an already encoded result.
func ValidateJSON(raw []byte) error {
	s, err := load()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode result for validation: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("result does not match outline schema: %w", err)
	}
	return nil
}
