package jsonpatch

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agentflare-ai/jsonpointer"
)

// Apply applies a series of JSON Patch operations to a document, returning a new
// modified document. The original document is not changed.
func Apply(document any, patch Patch) (any, error) {
	// Deep copy the document to avoid modifying the original
	docBytes, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	var result any
	if err := json.Unmarshal(docBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return ApplyInPlace(result, patch)
}

// ApplyInPlace applies a series of JSON Patch operations to a document in-place.
// WARNING: This function modifies the input document.
func ApplyInPlace(document any, patch Patch) (any, error) {
	for i, op := range patch {
		var err error
		switch op.Op {
		case Add:
			document, err = applyAdd(document, op.Path, op.Value)
		case Remove:
			document, err = applyRemove(document, op.Path)
		case Replace:
			document, err = applyReplace(document, op.Path, op.Value)
		case Move:
			document, err = applyMove(document, op.From, op.Path)
		case Copy:
			document, err = applyCopy(document, op.From, op.Path)
		case Test:
			err = applyTest(document, op.Path, op.Value)
		default:
			return nil, fmt.Errorf("unsupported patch operation: %s", op.Op)
		}

		if err != nil {
			return nil, fmt.Errorf("patch operation %d (%s %s) failed: %w", i, op.Op, op.Path, err)
		}
	}

	return document, nil
}

// ApplyStream applies a series of JSON Patch operations from a reader to a writer.
// The document is decoded once and patched in place.
func ApplyStream(reader io.Reader, writer io.Writer, patch Patch) error {
	var doc any
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	modifiedDoc, err := ApplyInPlace(doc, patch)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(writer)
	return encoder.Encode(modifiedDoc)
}

func applyAdd(document any, path string, value any) (any, error) {
	if path == "" {
		return value, nil
	}
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, err
	}

	parentPath := jsonpointer.Pointer(p[0 : len(p)-1]).String()
	token := p[len(p)-1]

	parent := document
	if parentPath != "" {
		if parent, err = jsonpointer.Get(document, parentPath); err != nil {
			return nil, fmt.Errorf("parent path '%s' not found for add: %w", parentPath, err)
		}
	}

	if arr, ok := parent.([]any); ok {
		if token == "-" {
			return setAt(document, parentPath, append(arr, value))
		}

		idx, err := jsonpointer.ParseArrayIndex(token)
		if err != nil {
			return nil, err
		}
		if idx > uint64(len(arr)) {
			return nil, fmt.Errorf("add operation on array index %d is out of bounds for array of length %d", idx, len(arr))
		}
		grown := make([]any, 0, len(arr)+1)
		grown = append(grown, arr[:idx]...)
		grown = append(grown, value)
		grown = append(grown, arr[idx:]...)
		return setAt(document, parentPath, grown)
	}

	return jsonpointer.Set(document, path, value)
}

// setAt stores value at path, treating the root pointer as a whole-document
// swap.
func setAt(document any, path string, value any) (any, error) {
	if path == "" {
		return value, nil
	}
	return jsonpointer.Set(document, path, value)
}

func applyRemove(document any, path string) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("cannot remove the document root")
	}
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, err
	}

	parentPath := jsonpointer.Pointer(p[0 : len(p)-1]).String()
	parent := document
	if parentPath != "" {
		if parent, err = jsonpointer.Get(document, parentPath); err != nil {
			return nil, fmt.Errorf("parent path '%s' not found for remove: %w", parentPath, err)
		}
	}

	if arr, ok := parent.([]any); ok {
		idx, err := jsonpointer.ParseArrayIndex(p[len(p)-1])
		if err != nil {
			return nil, err
		}
		if idx >= uint64(len(arr)) {
			return nil, fmt.Errorf("remove operation on array index %d is out of bounds for array of length %d", idx, len(arr))
		}
		shrunk := make([]any, 0, len(arr)-1)
		shrunk = append(shrunk, arr[:idx]...)
		shrunk = append(shrunk, arr[idx+1:]...)
		return setAt(document, parentPath, shrunk)
	}

	return jsonpointer.Remove(document, path)
}

func applyReplace(document any, path string, value any) (any, error) {
	if path == "" {
		return value, nil
	}
	// "replace" requires the target location to exist.
	if _, err := jsonpointer.Get(document, path); err != nil {
		return nil, err
	}
	return jsonpointer.Set(document, path, value)
}

func applyMove(document any, from, to string) (any, error) {
	if from == to {
		return document, nil
	}
	if strings.HasPrefix(to, from+"/") {
		return nil, fmt.Errorf("cannot move '%s' into its own child '%s'", from, to)
	}

	val, err := jsonpointer.Get(document, from)
	if err != nil {
		return nil, err
	}

	doc, err := applyRemove(document, from)
	if err != nil {
		return nil, err
	}

	// the destination index is interpreted against the array after removal
	return applyAdd(doc, to, val)
}

func applyCopy(document any, from, to string) (any, error) {
	val, err := jsonpointer.Get(document, from)
	if err != nil {
		return nil, err
	}
	return applyAdd(document, to, cloneValue(val))
}

func applyTest(document any, path string, expected any) error {
	actual, err := jsonpointer.Get(document, path)
	if err != nil {
		return err
	}
	if !DeepEqual(actual, expected) {
		return fmt.Errorf("test failed: expected %v, got %v", expected, actual)
	}
	return nil
}

// cloneValue copies the containers of a JSON tree so a copied subtree does not
// alias its source.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}
