package jsonpatch_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/agentflare-ai/go-jsonpatch"
)

// mustNew diffs a and b, applies the result to a and checks it lands on b.
func mustNew(t *testing.T, a, b any, opts ...jsonpatch.Option) jsonpatch.Patch {
	t.Helper()
	p, err := jsonpatch.New(a, b, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	src, err := normalized(a)
	if err != nil {
		t.Fatalf("normalize a: %v", err)
	}
	out, err := jsonpatch.Apply(src, p)
	if err != nil {
		t.Fatalf("Apply(New(a, b)) error: %v\npatch: %v", err, p)
	}
	want, err := normalized(b)
	if err != nil {
		t.Fatalf("normalize b: %v", err)
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("Apply(New(a, b)) mismatch (-want +got):\n%s", diff)
	}
	return p
}

func normalized(v any) (any, error) {
	raw, ok := v.([]byte)
	if !ok {
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	var out any
	err := json.Unmarshal(raw, &out)
	return out, err
}

func TestNew_ObjectBasic(t *testing.T) {
	a := map[string]any{"a": 1.0, "b": map[string]any{"x": 10.0}}
	b := map[string]any{"a": 2.0, "b": map[string]any{"x": 10.0, "y": 20.0}}

	want := jsonpatch.Patch{
		{Op: jsonpatch.Replace, Path: "/a", Value: 2.0},
		{Op: jsonpatch.Add, Path: "/b/y", Value: 20.0},
	}
	if diff := cmp.Diff(want, mustNew(t, a, b)); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_ArrayInsertRemoveMove(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want jsonpatch.Patch
	}{
		{
			name: "insert middle",
			a:    map[string]any{"arr": []any{"bar", "baz"}},
			b:    map[string]any{"arr": []any{"bar", "qux", "baz"}},
			want: jsonpatch.Patch{{Op: jsonpatch.Add, Path: "/arr/1", Value: "qux"}},
		},
		{
			name: "remove middle",
			a:    map[string]any{"arr": []any{"bar", "qux", "baz"}},
			b:    map[string]any{"arr": []any{"bar", "baz"}},
			want: jsonpatch.Patch{{Op: jsonpatch.Remove, Path: "/arr/1"}},
		},
		{
			name: "simple move",
			a:    map[string]any{"arr": []any{"a", "b", "c", "d"}},
			b:    map[string]any{"arr": []any{"a", "c", "b", "d"}},
			want: jsonpatch.Patch{{Op: jsonpatch.Move, From: "/arr/1", Path: "/arr/2"}},
		},
		{
			name: "duplicates",
			a:    map[string]any{"arr": []any{"a", "b", "a"}},
			b:    map[string]any{"arr": []any{"a", "a", "b"}},
			want: jsonpatch.Patch{{Op: jsonpatch.Move, From: "/arr/1", Path: "/arr/2"}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, mustNew(t, c.a, c.b)); diff != "" {
				t.Errorf("patch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNew_MixedInputs(t *testing.T) {
	aJSON := []byte(`{"a":1,"arr":["x","y"]}`)
	bMap := map[string]any{"a": 1.0, "arr": []any{"x", "y", "z"}}

	var a any
	if err := json.Unmarshal(aJSON, &a); err != nil {
		t.Fatalf("unmarshal a: %v", err)
	}
	p, err := jsonpatch.New(aJSON, bMap)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	want := jsonpatch.Patch{{Op: jsonpatch.Add, Path: "/arr/2", Value: "z"}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}
	mustNew(t, a, bMap)

	raw, err := jsonpatch.New(json.RawMessage(`[1,2]`), json.RawMessage(`[1,2,3]`))
	if err != nil {
		t.Fatalf("New(RawMessage) error: %v", err)
	}
	if diff := cmp.Diff(jsonpatch.Patch{{Op: jsonpatch.Add, Path: "/2", Value: 3.0}}, raw); diff != "" {
		t.Errorf("RawMessage patch mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_NumericNormalization(t *testing.T) {
	type S struct {
		N int `json:"n"`
	}
	p, err := jsonpatch.New(S{N: 1}, map[string]any{"n": 1.0})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if len(p) != 0 {
		t.Fatalf("expected an empty patch, got %v", p)
	}
}

func TestNew_InvalidInput(t *testing.T) {
	if _, err := jsonpatch.New([]byte(`{"a":`), map[string]any{}); err == nil {
		t.Error("expected an error for malformed source JSON")
	}
	if _, err := jsonpatch.New(map[string]any{}, make(chan int)); err == nil {
		t.Error("expected an error for an unmarshalable target")
	}
}

func TestNew_RootReplace_TypeChange(t *testing.T) {
	a := map[string]any{"x": 1.0}
	b := []any{1.0, 2.0}

	want := jsonpatch.Patch{{Op: jsonpatch.Replace, Path: "", Value: []any{1.0, 2.0}}}
	if diff := cmp.Diff(want, mustNew(t, a, b)); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_NoOpWhenEqual(t *testing.T) {
	a := map[string]any{"a": 1.0, "b": []any{1.0, 2.0}}
	p, err := jsonpatch.New(a, a)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p == nil || len(p) != 0 {
		t.Fatalf("expected a non-nil empty patch when inputs are equal, got %#v", p)
	}
}

func TestNew_Objects(t *testing.T) {
	cases := []struct {
		name  string
		a, b  string
		moves bool
		want  jsonpatch.Patch
	}{
		{
			name: "deep nested change",
			a:    `{"a":{"b":{"c":{"d":1,"e":true}}}}`,
			b:    `{"a":{"b":{"c":{"d":2,"f":"new"}}}}`,
			want: jsonpatch.Patch{
				{Op: jsonpatch.Replace, Path: "/a/b/c/d", Value: 2.0},
				{Op: jsonpatch.Remove, Path: "/a/b/c/e"},
				{Op: jsonpatch.Add, Path: "/a/b/c/f", Value: "new"},
			},
		},
		{
			name: "special characters in keys",
			a:    `{"a/b":1,"~c":1,"d/e~f":1}`,
			b:    `{"a/b":2,"~c":2,"d/e~f":2}`,
			want: jsonpatch.Patch{
				{Op: jsonpatch.Replace, Path: "/a~1b", Value: 2.0},
				{Op: jsonpatch.Replace, Path: "/d~1e~0f", Value: 2.0},
				{Op: jsonpatch.Replace, Path: "/~0c", Value: 2.0},
			},
		},
		{
			name:  "renamed key",
			a:     `{"a":1,"b":{"c":2}}`,
			b:     `{"a":1,"d":{"c":2}}`,
			moves: true,
			want:  jsonpatch.Patch{{Op: jsonpatch.Move, From: "/b", Path: "/d"}},
		},
		{
			name: "renamed key without moves",
			a:    `{"a":1,"b":{"c":2}}`,
			b:    `{"a":1,"d":{"c":2}}`,
			want: jsonpatch.Patch{
				{Op: jsonpatch.Remove, Path: "/b"},
				{Op: jsonpatch.Add, Path: "/d", Value: map[string]any{"c": 2.0}},
			},
		},
		{
			name:  "scalar under a new key is not a rename",
			a:     `{"a":1}`,
			b:     `{"b":1}`,
			moves: true,
			want: jsonpatch.Patch{
				{Op: jsonpatch.Remove, Path: "/a"},
				{Op: jsonpatch.Add, Path: "/b", Value: 1.0},
			},
		},
		{
			name:  "duplicated subtree is an add",
			a:     `{"a":{"b":1}}`,
			b:     `{"a":{"b":1},"c":{"b":1}}`,
			moves: true,
			want:  jsonpatch.Patch{{Op: jsonpatch.Add, Path: "/c", Value: map[string]any{"b": 1.0}}},
		},
		{
			name: "remove and add different keys",
			a:    `{"a":1}`,
			b:    `{"b":2}`,
			want: jsonpatch.Patch{
				{Op: jsonpatch.Remove, Path: "/a"},
				{Op: jsonpatch.Add, Path: "/b", Value: 2.0},
			},
		},
		{
			name: "null to value",
			a:    `{"a":null}`,
			b:    `{"a":1}`,
			want: jsonpatch.Patch{{Op: jsonpatch.Replace, Path: "/a", Value: 1.0}},
		},
		{
			name: "value to null",
			a:    `{"a":1}`,
			b:    `{"a":null}`,
			want: jsonpatch.Patch{{Op: jsonpatch.Replace, Path: "/a", Value: nil}},
		},
		{
			name: "add null member",
			a:    `{}`,
			b:    `{"a":null}`,
			want: jsonpatch.Patch{{Op: jsonpatch.Add, Path: "/a", Value: nil}},
		},
		{
			name: "remove null member",
			a:    `{"a":null}`,
			b:    `{}`,
			want: jsonpatch.Patch{{Op: jsonpatch.Remove, Path: "/a"}},
		},
		{
			name: "object to array",
			a:    `{"a":{"x":1}}`,
			b:    `{"a":[1]}`,
			want: jsonpatch.Patch{{Op: jsonpatch.Replace, Path: "/a", Value: []any{1.0}}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, b := []byte(c.a), []byte(c.b)
			got := mustNew(t, a, b, jsonpatch.WithMoves(c.moves))
			if diff := cmp.Diff(c.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("patch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
