package jsonpatch

import (
	"slices"
	"sort"

	"github.com/samber/lo"
)

// ValueDiffer computes the operations that turn a into b, rooted at path. The
// array engine calls back into it whenever two matched elements differ
// internally, so nested objects and arrays are diffed instead of replaced.
type ValueDiffer interface {
	DiffValues(a, b any, path string) Patch
}

// ValueDifferFunc adapts an ordinary function to the ValueDiffer interface.
type ValueDifferFunc func(a, b any, path string) Patch

// DiffValues calls f(a, b, path).
func (f ValueDifferFunc) DiffValues(a, b any, path string) Patch {
	return f(a, b, path)
}

// arrayResult is the outcome of diffing one pair of arrays. A degraded
// result carries the single whole-array replace that stands in for a search
// whose trace could not be backtracked, and the reason in err.
type arrayResult struct {
	ops      Patch
	distance int
	degraded bool
	err      error
}

// arrayDiffer turns two sequences into position-correct operations.
type arrayDiffer struct {
	values ValueDiffer
	moves  bool
	// script computes the edit script; replaced in tests
	script func(a, b []any) ([]edit, int, error)
}

func newArrayDiffer(values ValueDiffer, moves bool) *arrayDiffer {
	return &arrayDiffer{
		values: values,
		moves:  moves,
		script: shortestEditScript,
	}
}

func (ad *arrayDiffer) diff(source, target []any, base string) arrayResult {
	script, distance, err := ad.script(source, target)
	if err != nil {
		return arrayResult{
			ops:      Patch{{Op: Replace, Path: base, Value: target}},
			degraded: true,
			err:      err,
		}
	}
	return arrayResult{
		ops:      ad.translate(script, source, target, base),
		distance: distance,
	}
}

// indexPair matches a deleted source element with the inserted target element
// that takes its place.
type indexPair struct {
	src, tgt int
}

// translate converts an edit script into JSON Patch operations.
//
// Deletes and inserts that fall between the same two common entries form a
// gap; within a gap the i-th delete is paired with the i-th insert as an
// in-place replacement. The operations are then laid out in three phases so
// every index stays valid when the patch is replayed in order:
//
//  1. paired elements, addressed by source index, while the array still has
//     its original shape
//  2. unpaired deletes as removes, in descending source index
//  3. unpaired inserts as adds, in ascending target index
//
// With moves enabled, single-element relocations among the unpaired entries
// are emitted as moves ahead of phase 2.
func (ad *arrayDiffer) translate(script []edit, source, target []any, base string) Patch {
	var (
		paired           []indexPair
		deletes, inserts []int
		gapDel, gapIns   []int
	)
	flush := func() {
		n := min(len(gapDel), len(gapIns))
		for i := 0; i < n; i++ {
			paired = append(paired, indexPair{src: gapDel[i], tgt: gapIns[i]})
		}
		deletes = append(deletes, gapDel[n:]...)
		inserts = append(inserts, gapIns[n:]...)
		gapDel, gapIns = gapDel[:0], gapIns[:0]
	}
	for _, e := range script {
		switch e.kind {
		case editDelete:
			gapDel = append(gapDel, e.src)
		case editInsert:
			gapIns = append(gapIns, e.tgt)
		default:
			flush()
		}
	}
	flush()

	var ops Patch
	for _, p := range paired {
		path := AppendIndex(base, p.src)
		from, to := source[p.src], target[p.tgt]
		if sameContainerKind(from, to) {
			ops = append(ops, ad.values.DiffValues(from, to, path)...)
			continue
		}
		ops = append(ops, Operation{Op: Replace, Path: path, Value: to})
	}

	return append(ops, structuralOps(source, target, deletes, inserts, base, ad.moves)...)
}

// relocation pairs a deleted source element with an inserted target element
// of equal value. slot is the number of kept elements preceding the insert in
// the target.
type relocation struct {
	src, tgt, slot int
}

// structuralOps lays out the unpaired deletes and inserts of an array: moves
// first, then removes in descending position, then adds in ascending target
// index.
func structuralOps(source, target []any, deletes, inserts []int, base string, moves bool) Patch {
	var relocs []relocation
	if moves {
		relocs = matchRelocations(source, target, deletes, inserts)
	}
	moved := make(map[int]bool, len(relocs))
	placed := make(map[int]bool, len(relocs))

	// work is the array as a list of source indices, updated as moves replay
	work := make([]int, len(source))
	for i := range work {
		work[i] = i
	}

	ops := make(Patch, 0, len(deletes)+len(inserts))
	if len(relocs) > 0 {
		kept := keptIndices(len(source), deletes)
		for _, r := range relocs {
			from := lo.IndexOf(work, r.src)
			work = slices.Delete(work, from, from+1)
			to := 0
			if r.slot > 0 {
				to = lo.IndexOf(work, kept[r.slot-1]) + 1
			}
			work = slices.Insert(work, to, r.src)
			moved[r.src], placed[r.tgt] = true, true
			if from != to {
				ops = append(ops, Operation{Op: Move, From: AppendIndex(base, from), Path: AppendIndex(base, to)})
			}
		}
	}

	deleted := make(map[int]bool, len(deletes))
	for _, d := range deletes {
		deleted[d] = !moved[d]
	}
	for pos := len(work) - 1; pos >= 0; pos-- {
		if deleted[work[pos]] {
			ops = append(ops, Operation{Op: Remove, Path: AppendIndex(base, pos)})
		}
	}
	for _, t := range inserts {
		if !placed[t] {
			ops = append(ops, Operation{Op: Add, Path: AppendIndex(base, t), Value: target[t]})
		}
	}
	return ops
}

// matchRelocations pairs deletes with inserts of equal values. A pair
// qualifies only when no other delete or insert lands in the span of kept
// elements between its two positions, so only single-element relocations are
// found and a block of adjacent elements moving together stays as removes and
// adds.
func matchRelocations(source, target []any, deletes, inserts []int) []relocation {
	if len(deletes) == 0 || len(inserts) == 0 {
		return nil
	}
	kept := keptIndices(len(source), deletes)

	// both slot lists are non-decreasing since deletes and inserts are sorted
	delSlots := make([]int, len(deletes))
	for j, d := range deletes {
		delSlots[j] = sort.SearchInts(kept, d)
	}
	insSlots := make([]int, len(inserts))
	for j, t := range inserts {
		insSlots[j] = t - j
	}

	var out []relocation
	taken := make([]bool, len(inserts))
	for a, d := range deletes {
		for b, t := range inserts {
			if taken[b] {
				continue
			}
			first, last := min(delSlots[a], insSlots[b]), max(delSlots[a], insSlots[b])
			if countWithin(delSlots, first, last) != 1 || countWithin(insSlots, first, last) != 1 {
				continue
			}
			if !DeepEqual(source[d], target[t]) {
				continue
			}
			taken[b] = true
			out = append(out, relocation{src: d, tgt: t, slot: insSlots[b]})
			break
		}
	}
	return out
}

// keptIndices returns the source indices in [0, n) missing from the sorted
// deletes.
func keptIndices(n int, deletes []int) []int {
	kept := make([]int, 0, n-len(deletes))
	j := 0
	for i := 0; i < n; i++ {
		if j < len(deletes) && deletes[j] == i {
			j++
			continue
		}
		kept = append(kept, i)
	}
	return kept
}

// countWithin counts the values of sorted that fall in [first, last].
func countWithin(sorted []int, first, last int) int {
	return sort.SearchInts(sorted, last+1) - sort.SearchInts(sorted, first)
}
