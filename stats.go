package jsonpatch

// Stats holds statistical metadata about a diff
type Stats struct {
	Adds     int `json:"adds"`
	Removes  int `json:"removes"`
	Replaces int `json:"replaces"`
	Moves    int `json:"moves"`

	Arrays       int `json:"arrays"`             // number of array pairs run through the edit-script search
	EditDistance int `json:"editDistance"`       // summed insert+delete count over all searched arrays
	Degraded     int `json:"degraded,omitempty"` // arrays that fell back to a whole-array replace
}

// Operations returns the total number of operations in the diff.
func (s Stats) Operations() int {
	return s.Adds + s.Removes + s.Replaces + s.Moves
}

func (s *Stats) countPatch(p Patch) {
	s.Adds = p.count(Add)
	s.Removes = p.count(Remove)
	s.Replaces = p.count(Replace)
	s.Moves = p.count(Move)
}
