package jsonpatch

import "errors"

// errCorruptTrace reports a backtracking step that the recorded trace cannot
// explain. The array differ downgrades it to a whole-array replace.
var errCorruptTrace = errors.New("edit trace is inconsistent")

type editKind uint8

const (
	editCommon editKind = iota
	editDelete
	editInsert
)

func (k editKind) String() string {
	switch k {
	case editCommon:
		return "common"
	case editDelete:
		return "delete"
	case editInsert:
		return "insert"
	}
	return "unknown"
}

// edit is one entry of an edit script. src indexes the source sequence and
// tgt the target sequence. For a delete tgt is the target position the edit
// happened at, for an insert src is the source position.
type edit struct {
	kind     editKind
	src, tgt int
}

// editTrace records, for every edit distance d, the furthest x reached on
// each diagonal k = x - y. Row d has d+1 entries for k = -d, -d+2, ... d, so
// diagonal k lives at index (k+d)/2. Rows are appended once and never
// written again.
type editTrace [][]int

func (t editTrace) reach(d, k int) (int, bool) {
	if d < 0 || d >= len(t) || k < -d || k > d || (k+d)%2 != 0 {
		return 0, false
	}
	row := t[d]
	i := (k + d) / 2
	if i >= len(row) {
		return 0, false
	}
	return row[i], true
}

// shortestEditScript returns a minimal edit script turning a into b together
// with its edit distance. The common prefix and suffix are stripped before the
// O((N+M)D) search so only the divergent middle is searched.
func shortestEditScript(a, b []any) ([]edit, int, error) {
	n, m := len(a), len(b)

	pre := 0
	for pre < n && pre < m && DeepEqual(a[pre], b[pre]) {
		pre++
	}
	suf := 0
	for suf < n-pre && suf < m-pre && DeepEqual(a[n-1-suf], b[m-1-suf]) {
		suf++
	}

	midA, midB := a[pre:n-suf], b[pre:m-suf]
	trace := search(midA, midB)
	mid, err := backtrack(trace, midA, midB)
	if err != nil {
		return nil, 0, err
	}

	script := make([]edit, 0, pre+len(mid)+suf)
	for i := 0; i < pre; i++ {
		script = append(script, edit{kind: editCommon, src: i, tgt: i})
	}
	for _, e := range mid {
		e.src += pre
		e.tgt += pre
		script = append(script, e)
	}
	for i := 0; i < suf; i++ {
		script = append(script, edit{kind: editCommon, src: n - suf + i, tgt: m - suf + i})
	}
	return script, len(trace) - 1, nil
}

// search runs the greedy forward pass of Myers' algorithm ("An O(ND)
// Difference Algorithm and Its Variations", 1986) and returns every row it
// computed. The last row is the one in which (len(a), len(b)) was reached.
func search(a, b []any) editTrace {
	n, m := len(a), len(b)
	trace := make(editTrace, 0, 8)

	var prev []int
	for d := 0; d <= n+m; d++ {
		row := make([]int, d+1)
		for k := -d; k <= d; k += 2 {
			i := (k + d) / 2
			var x int
			switch {
			case d == 0:
				x = 0
			case k == -d || (k != d && prev[i-1] < prev[i]):
				// insert: step down from diagonal k+1
				x = prev[i]
			default:
				// delete: step right from diagonal k-1
				x = prev[i-1] + 1
			}
			y := x - k
			for x < n && y < m && DeepEqual(a[x], b[y]) {
				x++
				y++
			}
			row[i] = x

			if x >= n && y >= m {
				return append(trace, row)
			}
		}
		trace = append(trace, row)
		prev = row
	}
	return trace
}

// backtrack walks trace from (len(a), len(b)) back to the origin and returns
// the edit script in forward order. At each distance the move into diagonal k
// is re-derived with the same rule the forward pass used: an insert when
// k == -d, or when k != d and the k-1 reach is smaller than the k+1 reach;
// a delete otherwise.
func backtrack(trace editTrace, a, b []any) ([]edit, error) {
	x, y := len(a), len(b)
	if len(trace) == 0 {
		return nil, errCorruptTrace
	}

	script := make([]edit, 0, x+y)
	for d := len(trace) - 1; d >= 0; d-- {
		k := x - y
		if r, ok := trace.reach(d, k); !ok || r != x {
			return nil, errCorruptTrace
		}

		// start of the snake that ends at (x, y)
		midX, midY := 0, 0
		var step edit
		if d > 0 {
			left, okLeft := trace.reach(d-1, k-1)
			right, okRight := trace.reach(d-1, k+1)

			var prevX, prevK int
			switch {
			case k == -d || (k != d && okLeft && okRight && left < right):
				if !okRight {
					return nil, errCorruptTrace
				}
				prevX, prevK = right, k+1
				prevY := prevX - prevK
				midX, midY = prevX, prevY+1
				step = edit{kind: editInsert, src: prevX, tgt: prevY}
			default:
				if !okLeft {
					return nil, errCorruptTrace
				}
				prevX, prevK = left, k-1
				prevY := prevX - prevK
				midX, midY = prevX+1, prevY
				step = edit{kind: editDelete, src: prevX, tgt: prevY}
			}
		}

		if x-midX != y-midY || x < midX || midX < 0 || midY < 0 {
			return nil, errCorruptTrace
		}
		for x > midX {
			x--
			y--
			if !DeepEqual(a[x], b[y]) {
				return nil, errCorruptTrace
			}
			script = append(script, edit{kind: editCommon, src: x, tgt: y})
		}

		if d == 0 {
			break
		}
		if step.src < 0 || step.src > len(a) || step.tgt < 0 || step.tgt > len(b) ||
			(step.kind == editInsert && step.tgt == len(b)) ||
			(step.kind == editDelete && step.src == len(a)) {
			return nil, errCorruptTrace
		}
		script = append(script, step)
		x, y = step.src, step.tgt
	}

	if x != 0 || y != 0 {
		return nil, errCorruptTrace
	}

	for i, j := 0, len(script)-1; i < j; i, j = i+1, j-1 {
		script[i], script[j] = script[j], script[i]
	}
	return script, nil
}
