package jsonpatch

import (
	"encoding/json"
)

// Op represents JSON Patch operation types
type Op string

const (
	Add     Op = "add"
	Remove  Op = "remove"
	Replace Op = "replace"
	Move    Op = "move"
	Copy    Op = "copy"
	Test    Op = "test"
)

// Operation represents a single JSON Patch operation. The generator only ever
// produces add, remove, replace and move; copy and test are understood by
// Apply for RFC 6902 compatibility.
type Operation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Patch represents a collection of JSON Patch operations
type Patch []Operation

type valueOperation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type fromOperation struct {
	Op   Op     `json:"op"`
	From string `json:"from"`
	Path string `json:"path"`
}

type pathOperation struct {
	Op   Op     `json:"op"`
	Path string `json:"path"`
}

// MarshalJSON writes the RFC 6902 shape of the operation. "value" is always
// present for add, replace and test, including when it is null.
func (o Operation) MarshalJSON() ([]byte, error) {
	switch o.Op {
	case Add, Replace, Test:
		return json.Marshal(valueOperation{Op: o.Op, Path: o.Path, Value: o.Value})
	case Move, Copy:
		return json.Marshal(fromOperation{Op: o.Op, From: o.From, Path: o.Path})
	default:
		return json.Marshal(pathOperation{Op: o.Op, Path: o.Path})
	}
}

// count returns how many operations of kind op the patch holds.
func (p Patch) count(op Op) int {
	n := 0
	for _, o := range p {
		if o.Op == op {
			n++
		}
	}
	return n
}
