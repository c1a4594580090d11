package store

import "sort"

// Record is one row keyed by column name. Absent columns read as "".
type Record map[string]string

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// row is an immutable published record. ord fixes its place in table order
// and never changes; version is the commit sequence that last wrote it.
type row struct {
	rec     Record
	ord     uint64
	version uint64
}

const chunkSize = 128

// table is one immutable version of a table. Rows live in ord-sorted chunks
// of at most chunkSize, so a write copies the chunk list and a single chunk
// while every other chunk, and every untouched trie node, is shared with the
// version it was derived from.
type table struct {
	schema  *TableSchema
	chunks  [][]*row
	size    int
	lastOrd uint64
	byKey   trie[*row]
	// column -> value -> primary key -> ord
	indexes map[string]trie[trie[uint64]]
}

func newTable(schema *TableSchema, rows []*row) *table {
	t := &table{schema: schema, indexes: make(map[string]trie[trie[uint64]], len(schema.Indexes))}
	for _, col := range schema.Indexes {
		t.indexes[col] = trie[trie[uint64]]{}
	}
	key := schema.Key()
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		t.chunks = append(t.chunks, rows[start:end:end])
	}
	for _, r := range rows {
		t.lastOrd++
		r.ord = t.lastOrd
		t.byKey = t.byKey.set(r.rec[key], r)
		for col, idx := range t.indexes {
			t.indexes[col] = indexAdd(idx, r.rec[col], r.rec[key], r.ord)
		}
	}
	t.size = len(rows)
	return t
}

func indexAdd(idx trie[trie[uint64]], value, key string, ord uint64) trie[trie[uint64]] {
	keys, _ := idx.get(value)
	return idx.set(value, keys.set(key, ord))
}

func indexDrop(idx trie[trie[uint64]], value, key string) trie[trie[uint64]] {
	keys, ok := idx.get(value)
	if !ok {
		return idx
	}
	keys = keys.delete(key)
	if keys.size == 0 {
		return idx.delete(value)
	}
	return idx.set(value, keys)
}

func (t *table) lookup(key string) (*row, bool) {
	return t.byKey.get(key)
}

// locate returns the chunk and offset holding ord.
func (t *table) locate(ord uint64) (int, int) {
	ci := sort.Search(len(t.chunks), func(i int) bool {
		c := t.chunks[i]
		return c[len(c)-1].ord >= ord
	})
	c := t.chunks[ci]
	return ci, sort.Search(len(c), func(i int) bool { return c[i].ord >= ord })
}

// position is r's zero-based index in table order.
func (t *table) position(r *row) int {
	ci, off := t.locate(r.ord)
	for _, c := range t.chunks[:ci] {
		off += len(c)
	}
	return off
}

func (t *table) at(pos int) (*row, bool) {
	if pos < 0 || pos >= t.size {
		return nil, false
	}
	for _, c := range t.chunks {
		if pos < len(c) {
			return c[pos], true
		}
		pos -= len(c)
	}
	return nil, false
}

// each visits rows in table order until fn returns false.
func (t *table) each(fn func(r *row) bool) {
	for _, c := range t.chunks {
		for _, r := range c {
			if !fn(r) {
				return
			}
		}
	}
}

// matches returns the rows whose column equals value, in table order.
func (t *table) matches(column, value string) []*row {
	if column == t.schema.Key() {
		if r, ok := t.byKey.get(value); ok {
			return []*row{r}
		}
		return nil
	}
	if idx, ok := t.indexes[column]; ok {
		keys, _ := idx.get(value)
		out := make([]*row, 0, keys.size)
		keys.each(func(key string, _ uint64) {
			if r, ok := t.byKey.get(key); ok {
				out = append(out, r)
			}
		})
		sort.Slice(out, func(i, j int) bool { return out[i].ord < out[j].ord })
		return out
	}
	var out []*row
	t.each(func(r *row) bool {
		if r.rec[column] == value {
			out = append(out, r)
		}
		return true
	})
	return out
}

func (t *table) derive() *table {
	n := *t
	return &n
}

func (t *table) chunksWith(ci int, c []*row) [][]*row {
	chunks := make([][]*row, len(t.chunks))
	copy(chunks, t.chunks)
	chunks[ci] = c
	return chunks
}

// insert returns a version of t with rec appended.
func (t *table) insert(rec Record, version uint64) *table {
	n := t.derive()
	n.lastOrd++
	r := &row{rec: rec, ord: n.lastOrd, version: version}

	last := len(t.chunks) - 1
	if last >= 0 && len(t.chunks[last]) < chunkSize {
		c := make([]*row, len(t.chunks[last]), len(t.chunks[last])+1)
		copy(c, t.chunks[last])
		n.chunks = t.chunksWith(last, append(c, r))
	} else {
		n.chunks = make([][]*row, len(t.chunks), len(t.chunks)+1)
		copy(n.chunks, t.chunks)
		n.chunks = append(n.chunks, []*row{r})
	}
	n.size++

	key := rec[t.schema.Key()]
	n.byKey = t.byKey.set(key, r)
	n.indexes = make(map[string]trie[trie[uint64]], len(t.indexes))
	for col, idx := range t.indexes {
		n.indexes[col] = indexAdd(idx, rec[col], key, r.ord)
	}
	return n
}

// replace returns a version of t with old's record swapped for rec in place.
func (t *table) replace(old *row, rec Record, version uint64) *table {
	n := t.derive()
	r := &row{rec: rec, ord: old.ord, version: version}

	ci, off := t.locate(old.ord)
	c := make([]*row, len(t.chunks[ci]))
	copy(c, t.chunks[ci])
	c[off] = r
	n.chunks = t.chunksWith(ci, c)

	key := rec[t.schema.Key()]
	n.byKey = t.byKey.set(key, r)
	n.indexes = make(map[string]trie[trie[uint64]], len(t.indexes))
	for col, idx := range t.indexes {
		if prev := old.rec[col]; prev != rec[col] {
			idx = indexAdd(indexDrop(idx, prev, key), rec[col], key, r.ord)
		}
		n.indexes[col] = idx
	}
	return n
}

// remove returns a version of t without old. Later rows move up one position.
func (t *table) remove(old *row) *table {
	n := t.derive()

	ci, off := t.locate(old.ord)
	src := t.chunks[ci]
	if len(src) == 1 {
		n.chunks = make([][]*row, 0, len(t.chunks)-1)
		n.chunks = append(n.chunks, t.chunks[:ci]...)
		n.chunks = append(n.chunks, t.chunks[ci+1:]...)
	} else {
		c := make([]*row, 0, len(src)-1)
		c = append(c, src[:off]...)
		c = append(c, src[off+1:]...)
		n.chunks = t.chunksWith(ci, c)
	}
	n.size--

	key := old.rec[t.schema.Key()]
	n.byKey = t.byKey.delete(key)
	n.indexes = make(map[string]trie[trie[uint64]], len(t.indexes))
	for col, idx := range t.indexes {
		n.indexes[col] = indexDrop(idx, old.rec[col], key)
	}
	return n
}

func (t *table) records() []Record {
	out := make([]Record, 0, t.size)
	t.each(func(r *row) bool {
		out = append(out, r.rec)
		return true
	})
	return out
}
