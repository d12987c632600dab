package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemas holds compiled schemas by Schema.Name. Question and concept
// schemas are registered once at startup; anything else is compiled on
// first use.
var schemas = struct {
	sync.RWMutex
	byName map[string]*jsonschema.Schema
}{byName: make(map[string]*jsonschema.Schema)}

// RegisterSchema compiles s and makes it available to every provider.
// Registering the same name again replaces the compiled schema.
func RegisterSchema(s *Schema) error {
	compiled, err := compileSchema(s)
	if err != nil {
		return err
	}
	schemas.Lock()
	schemas.byName[s.Name] = compiled
	schemas.Unlock()
	return nil
}

// MustRegisterSchema is RegisterSchema for package-level schema values.
func MustRegisterSchema(s *Schema) *Schema {
	if err := RegisterSchema(s); err != nil {
		panic(err)
	}
	return s
}

func lookupSchema(s *Schema) (*jsonschema.Schema, error) {
	schemas.RLock()
	compiled, ok := schemas.byName[s.Name]
	schemas.RUnlock()
	if ok {
		return compiled, nil
	}
	if err := RegisterSchema(s); err != nil {
		return nil, err
	}
	schemas.RLock()
	defer schemas.RUnlock()
	return schemas.byName[s.Name], nil
}

func compileSchema(s *Schema) (*jsonschema.Schema, error) {
	// The compiler wants decoded JSON values, not Go maps of typed slices.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %q: marshal: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema %q: decode: %w", s.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + s.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %q: compile: %w", s.Name, err)
	}
	return compiled, nil
}

// validateResponse checks a provider reply against schema and returns the
// JSON document it contains. Models in json_object mode sometimes wrap the
// object in a markdown fence or a line of prose; that wrapping is removed
// before validation. A nil schema passes raw through unchanged.
func validateResponse(provider string, schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}

	content := extractJSONObject(raw)
	invalid := func(err error) error {
		return &ErrInvalidResponse{Provider: provider, Schema: schema.Name, Content: raw, Err: err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		return nil, invalid(fmt.Errorf("not JSON: %w", err))
	}
	compiled, err := lookupSchema(schema)
	if err != nil {
		return nil, invalid(err)
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, invalid(describeValidation(err))
	}
	return content, nil
}

// extractJSONObject trims everything outside the outermost braces.
func extractJSONObject(raw json.RawMessage) json.RawMessage {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return bytes.TrimSpace(raw)
	}
	return raw[start : end+1]
}

// describeValidation reports the deepest failing location, e.g.
// "/questions/2/difficulty", which is where a model usually went wrong.
func describeValidation(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := "/" + strings.Join(leaf.InstanceLocation, "/")
	return fmt.Errorf("at %s: %w", loc, err)
}
