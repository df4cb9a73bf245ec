package bsql

import "slices"

// tracker indexes the live records of a session by table name and then by
// primary-key tuple. New records whose key is generated by the database are
// kept unkeyed until their INSERT.
type tracker struct {
	keyed   map[string]map[string]*Record
	members map[*Record]string
	order   []*Record
}

func newTracker() *tracker {
	return &tracker{
		keyed:   make(map[string]map[string]*Record),
		members: make(map[*Record]string),
	}
}

func (t *tracker) lookup(table, key string) (*Record, bool) {
	r, ok := t.keyed[table][key]
	return r, ok
}

func (t *tracker) contains(r *Record) bool {
	_, ok := t.members[r]
	return ok
}

// add tracks r under key. An empty key tracks r unkeyed. The caller checks
// for duplicates.
func (t *tracker) add(r *Record, key string) {
	t.members[r] = key
	t.order = append(t.order, r)
	if key != "" {
		t.index(r, key)
	}
}

// rekey indexes an unkeyed record once its key is known.
func (t *tracker) rekey(r *Record, key string) {
	if old, ok := t.members[r]; !ok || old == key {
		return
	}
	t.members[r] = key
	t.index(r, key)
}

func (t *tracker) index(r *Record, key string) {
	m, ok := t.keyed[r.Table()]
	if !ok {
		m = make(map[string]*Record)
		t.keyed[r.Table()] = m
	}
	m[key] = r
}

func (t *tracker) remove(r *Record) {
	key, ok := t.members[r]
	if !ok {
		return
	}
	delete(t.members, r)
	if key != "" {
		delete(t.keyed[r.Table()], key)
	}
	t.order = slices.DeleteFunc(t.order, func(o *Record) bool { return o == r })
}

// records returns the tracked records in the order they were tracked.
func (t *tracker) records() []*Record {
	return slices.Clone(t.order)
}

func (t *tracker) len() int { return len(t.order) }

func (t *tracker) clear() {
	clear(t.keyed)
	clear(t.members)
	t.order = nil
}
