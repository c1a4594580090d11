package store

import "hash/maphash"

const (
	trieBits  = 5
	trieWidth = 1 << trieBits
	trieMask  = trieWidth - 1
	leafMax   = 8
)

var hashSeed = maphash.MakeSeed()

type trieEntry[V any] struct {
	hash uint64
	key  string
	val  V
}

// trieNode is either a branch (children set) or a leaf bucket of entries.
// Nodes are never modified once reachable from a published trie.
type trieNode[V any] struct {
	children *[trieWidth]*trieNode[V]
	entries  []trieEntry[V]
}

// trie is a persistent hash map keyed by string. set and delete return a new
// trie that shares every untouched node with the receiver.
type trie[V any] struct {
	root *trieNode[V]
	size int
}

func slot(h uint64, depth int) uint64 {
	return (h >> (uint(depth) * trieBits)) & trieMask
}

func (t trie[V]) get(key string) (V, bool) {
	h := maphash.String(hashSeed, key)
	n := t.root
	for depth := 0; n != nil; depth++ {
		if n.children == nil {
			for _, e := range n.entries {
				if e.hash == h && e.key == key {
					return e.val, true
				}
			}
			break
		}
		n = n.children[slot(h, depth)]
	}
	var zero V
	return zero, false
}

func (t trie[V]) set(key string, val V) trie[V] {
	root, added := t.root.set(0, trieEntry[V]{hash: maphash.String(hashSeed, key), key: key, val: val})
	t.root = root
	if added {
		t.size++
	}
	return t
}

func (t trie[V]) delete(key string) trie[V] {
	root, removed := t.root.delete(0, maphash.String(hashSeed, key), key)
	if removed {
		t.root = root
		t.size--
	}
	return t
}

func (t trie[V]) each(fn func(key string, val V)) {
	t.root.each(fn)
}

func (n *trieNode[V]) set(depth int, e trieEntry[V]) (*trieNode[V], bool) {
	if n == nil {
		return &trieNode[V]{entries: []trieEntry[V]{e}}, true
	}
	if n.children != nil {
		i := slot(e.hash, depth)
		child, added := n.children[i].set(depth+1, e)
		children := *n.children
		children[i] = child
		return &trieNode[V]{children: &children}, added
	}

	entries := make([]trieEntry[V], len(n.entries), len(n.entries)+1)
	copy(entries, n.entries)
	for i := range entries {
		if entries[i].hash == e.hash && entries[i].key == e.key {
			entries[i] = e
			return &trieNode[V]{entries: entries}, false
		}
	}
	entries = append(entries, e)
	// past the last usable hash bits a bucket just grows
	if len(entries) <= leafMax || uint(depth+1)*trieBits >= 64 {
		return &trieNode[V]{entries: entries}, true
	}
	split := &trieNode[V]{children: new([trieWidth]*trieNode[V])}
	for _, old := range entries {
		i := slot(old.hash, depth)
		split.children[i], _ = split.children[i].set(depth+1, old)
	}
	return split, true
}

func (n *trieNode[V]) delete(depth int, h uint64, key string) (*trieNode[V], bool) {
	if n == nil {
		return nil, false
	}
	if n.children != nil {
		i := slot(h, depth)
		child, removed := n.children[i].delete(depth+1, h, key)
		if !removed {
			return n, false
		}
		children := *n.children
		children[i] = child
		return &trieNode[V]{children: &children}, true
	}
	for i, e := range n.entries {
		if e.hash != h || e.key != key {
			continue
		}
		if len(n.entries) == 1 {
			return nil, true
		}
		entries := make([]trieEntry[V], 0, len(n.entries)-1)
		entries = append(entries, n.entries[:i]...)
		entries = append(entries, n.entries[i+1:]...)
		return &trieNode[V]{entries: entries}, true
	}
	return n, false
}

func (n *trieNode[V]) each(fn func(key string, val V)) {
	if n == nil {
		return
	}
	if n.children == nil {
		for _, e := range n.entries {
			fn(e.key, e.val)
		}
		return
	}
	for _, c := range n.children {
		c.each(fn)
	}
}
