package types

import "fmt"

// Snapshot is the serializable image of an interner. The frontend ships it
// alongside a MIR module so TypeIDs stay meaningful across the repo boundary.
type Snapshot struct {
	Types   []Type
	Structs []StructInfo
}

// Export captures the current interner state.
func (in *Interner) Export() Snapshot {
	s := Snapshot{
		Types:   make([]Type, len(in.types)),
		Structs: make([]StructInfo, len(in.structs)),
	}
	copy(s.Types, in.types)
	copy(s.Structs, in.structs)
	return s
}

// FromSnapshot rebuilds an interner from a serialized image. TypeIDs recorded
// against the exporting interner remain valid against the result.
func FromSnapshot(s Snapshot) (*Interner, error) {
	in := NewInterner()
	if len(s.Structs) == 0 || len(s.Types) < in.Len() {
		return nil, fmt.Errorf("types: snapshot is missing builtin types")
	}
	for i := 0; i < in.Len(); i++ {
		if s.Types[i] != in.types[i] {
			return nil, fmt.Errorf("types: snapshot builtin %d does not match this registry", i+1)
		}
	}
	for _, t := range s.Types[in.Len():] {
		if t.Kind == KindInvalid {
			return nil, fmt.Errorf("types: snapshot contains an invalid type descriptor")
		}
		in.internRaw(t)
	}
	in.structs = append(in.structs[:1], s.Structs[1:]...)
	return in, nil
}
