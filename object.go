package jsonpatch

import (
	"sort"

	"github.com/samber/lo"
)

// diffObjects compares two objects key by key in sorted key order. Changes to
// shared keys come first, then removals (or moves), then additions.
func (d *Differ) diffObjects(a, b map[string]any, path string) Patch {
	keys := lo.Union(lo.Keys(a), lo.Keys(b))
	sort.Strings(keys)

	var (
		ops            Patch
		removed, added []string
	)
	for _, k := range keys {
		av, inA := a[k]
		bv, inB := b[k]
		switch {
		case !inB:
			removed = append(removed, k)
		case !inA:
			added = append(added, k)
		default:
			ops = append(ops, d.DiffValues(av, bv, AppendPath(path, k))...)
		}
	}

	var renamed map[string]string
	if d.cfg.moves {
		renamed = matchRenamedKeys(a, b, removed, added)
	}

	taken := make(map[string]bool, len(renamed))
	for _, k := range removed {
		if to, ok := renamed[k]; ok {
			taken[to] = true
			ops = append(ops, Operation{Op: Move, From: AppendPath(path, k), Path: AppendPath(path, to)})
			continue
		}
		ops = append(ops, Operation{Op: Remove, Path: AppendPath(path, k)})
	}
	for _, k := range added {
		if taken[k] {
			continue
		}
		ops = append(ops, Operation{Op: Add, Path: AppendPath(path, k), Value: b[k]})
	}
	return ops
}

// matchRenamedKeys pairs each removed key holding an object or array with the
// first unclaimed added key of the same object holding an equal value.
// Scalars are never treated as renamed; an equal number or string appearing
// under another key is usually a coincidence.
func matchRenamedKeys(a, b map[string]any, removed, added []string) map[string]string {
	if len(removed) == 0 || len(added) == 0 {
		return nil
	}
	renamed := make(map[string]string)
	claimed := make(map[string]bool)
	for _, rk := range lo.Filter(removed, func(k string, _ int) bool { return isContainer(a[k]) }) {
		ak, ok := lo.Find(added, func(k string) bool {
			return !claimed[k] && DeepEqual(a[rk], b[k])
		})
		if ok {
			renamed[rk] = ak
			claimed[ak] = true
		}
	}
	return renamed
}
