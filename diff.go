package jsonpatch

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// New computes the patch that turns document a into document b.
//
// Both documents are normalized to plain JSON trees first: []byte and
// json.RawMessage values are decoded, anything else is marshaled and decoded
// again, so structs, maps and numbers of any Go type compare by their JSON
// form. An error is only returned when a document cannot be normalized.
func New(a, b any, opts ...Option) (Patch, error) {
	src, err := normalize(a)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize source document: %w", err)
	}
	dst, err := normalize(b)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize target document: %w", err)
	}
	return NewDiffer(opts...).Diff(src, dst), nil
}

func normalize(v any) (any, error) {
	var raw []byte
	switch x := v.(type) {
	case json.RawMessage:
		raw = x
	case []byte:
		raw = x
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Differ computes JSON Patches between JSON trees made of map[string]any,
// []any, string, float64, bool and nil. It is the recursive dispatcher the
// array engine calls back into. A Differ keeps no state between calls apart
// from the optional Stats sink, which makes it unsafe for concurrent use only
// when WithStats is set.
type Differ struct {
	cfg    *config
	arrays *arrayDiffer
}

// NewDiffer returns a Differ configured by opts.
func NewDiffer(opts ...Option) *Differ {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	d := &Differ{cfg: cfg}
	d.arrays = newArrayDiffer(d, cfg.moves)
	return d
}

// Diff returns the patch turning a into b. The result is never nil; equal
// documents give an empty patch.
func (d *Differ) Diff(a, b any) Patch {
	d.resetStats()
	p := d.DiffValues(a, b, "")
	if p == nil {
		p = Patch{}
	}
	d.countStats(p)
	return p
}

func (d *Differ) resetStats() {
	if st := d.cfg.stats; st != nil {
		*st = Stats{}
	}
}

func (d *Differ) countStats(p Patch) {
	if st := d.cfg.stats; st != nil {
		st.countPatch(p)
	}
}

// DiffValues returns the operations turning a into b, rooted at path. Objects
// are compared key by key, arrays go through the edit-script engine, and any
// other difference (including a change of type) is a single replace.
//
// DiffValues is the callback the array engine recurses through, so it adds to
// the Stats sink without resetting it or counting operations.
func (d *Differ) DiffValues(a, b any, path string) Patch {
	if DeepEqual(a, b) {
		return nil
	}
	switch av := a.(type) {
	case map[string]any:
		if bv, ok := b.(map[string]any); ok {
			return d.diffObjects(av, bv, path)
		}
	case []any:
		if bv, ok := b.([]any); ok {
			return d.diffArrays(d.arrays, av, bv, path)
		}
	}
	return Patch{{Op: Replace, Path: path, Value: b}}
}

// DiffArrays returns the operations turning source into target, rooted at
// basePath, recursing through d for elements that changed in place.
func (d *Differ) DiffArrays(source, target []any, basePath string) Patch {
	d.resetStats()
	p := d.diffArrays(d.arrays, source, target, basePath)
	d.countStats(p)
	return p
}

// DiffArrays returns the operations turning source into target, rooted at
// basePath. Matched elements that differ internally are handed to values; a
// nil values recurses with a default Differ built from opts.
//
// The number of adds and removes is minimal for the pair of arrays. If the
// edit-script search ever fails its own consistency checks the result is a
// single replace of the whole array at basePath.
func DiffArrays(source, target []any, basePath string, values ValueDiffer, opts ...Option) Patch {
	d := NewDiffer(opts...)
	if values == nil {
		values = d
	}
	d.resetStats()
	p := d.diffArrays(newArrayDiffer(values, d.cfg.moves), source, target, basePath)
	d.countStats(p)
	return p
}

func (d *Differ) diffArrays(ad *arrayDiffer, source, target []any, basePath string) Patch {
	res := ad.diff(source, target, basePath)

	if st := d.cfg.stats; st != nil {
		st.Arrays++
		st.EditDistance += res.distance
		if res.degraded {
			st.Degraded++
		}
	}

	if res.degraded {
		d.cfg.log.Warn("array diff degraded to whole-array replace",
			zap.String("path", basePath),
			zap.Int("source", len(source)),
			zap.Int("target", len(target)),
			zap.Error(res.err),
		)
		return res.ops
	}

	d.cfg.log.Debug("diffed array",
		zap.String("path", basePath),
		zap.Int("source", len(source)),
		zap.Int("target", len(target)),
		zap.Int("distance", res.distance),
		zap.Int("operations", len(res.ops)),
	)
	return res.ops
}
