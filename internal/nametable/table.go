// Package nametable implements the open-addressed, name-keyed hash
// table shared by the DTD's entity, element-type, notation and prefix
// stores.
//
// The probing scheme, hash accumulator and 0.5 load factor follow the
// parser's named-table design directly: a 5-bit rotate-style
// accumulator over the key's bytes, linear *backward* probing modulo
// the table size, doubling when the table is half full.
package nametable

const (
	initSize    = 64
	loadFactor2 = 2 // table doubles once count*loadFactor2 > size
)

// Table is a name -> value map with unspecified, unstable-across-
// resize iteration order, matching the original's semantics.
type Table struct {
	slots []slot
	count int
}

type slot struct {
	name  string
	value interface{}
	used  bool
}

// New returns an empty table.
func New() *Table {
	return &Table{slots: make([]slot, initSize)}
}

func hash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = (h << 5) + h + uint32(name[i])
	}
	return h
}

// probe returns the slot index holding name, or the first empty slot
// on the probe path if name is not present.
func (t *Table) probe(name string) int {
	size := uint32(len(t.slots))
	mask := size - 1
	i := hash(name) & mask
	for {
		s := &t.slots[i]
		if !s.used || s.name == name {
			return int(i)
		}
		// linear backward probing: step toward 0, wrap to size-1
		if i == 0 {
			i = size - 1
		} else {
			i--
		}
	}
}

// Lookup returns the value stored under name. If name is absent and
// create is non-nil, create() is invoked to produce the value to
// store and return; create is never called when name is already
// present. A nil create with a miss returns (nil, false).
func (t *Table) Lookup(name string, create func() interface{}) (value interface{}, found bool) {
	i := t.probe(name)
	s := &t.slots[i]
	if s.used {
		return s.value, true
	}
	if create == nil {
		return nil, false
	}
	v := create()
	t.insert(name, v)
	return v, false
}

// Get is Lookup without the ability to create a missing entry.
func (t *Table) Get(name string) (interface{}, bool) {
	return t.Lookup(name, nil)
}

// Set inserts or overwrites the value stored under name.
func (t *Table) Set(name string, value interface{}) {
	i := t.probe(name)
	if t.slots[i].used {
		t.slots[i].value = value
		return
	}
	t.insert(name, value)
}

func (t *Table) insert(name string, value interface{}) {
	if (t.count+1)*loadFactor2 > len(t.slots) {
		t.grow()
	}
	i := t.probe(name)
	t.slots[i] = slot{name: name, value: value, used: true}
	t.count++
}

func (t *Table) grow() {
	old := t.slots
	t.slots = make([]slot, len(old)*2)
	t.count = 0
	for _, s := range old {
		if s.used {
			t.insert(s.name, s.value)
		}
	}
}

// Len reports the number of entries currently stored.
func (t *Table) Len() int {
	return t.count
}

// Each calls fn once per entry in unspecified order, mirroring the
// original's "walk the slot array skipping nulls" iteration. fn must
// not insert into the table while iterating.
func (t *Table) Each(fn func(name string, value interface{})) {
	for _, s := range t.slots {
		if s.used {
			fn(s.name, s.value)
		}
	}
}
