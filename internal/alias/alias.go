// Package alias maps known duplicate paper ids onto their canonical id.
package alias

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/file-citas/zotgraph/internal/paper"
)

// maxChain bounds alias chain resolution.
const maxChain = 16

// Table is a static duplicate-id to canonical-id mapping.
type Table struct {
	canon map[string]string
	dups  map[string][]string
}

// New builds a table from a duplicate -> canonical map.
func New(m map[string]string) *Table {
	t := &Table{canon: make(map[string]string, len(m)), dups: make(map[string][]string)}
	for dup, c := range m {
		if dup == "" || c == "" || dup == c {
			continue
		}
		t.canon[dup] = c
	}
	for dup := range t.canon {
		c := t.Canonical(dup)
		if c != dup {
			t.dups[c] = append(t.dups[c], dup)
		}
	}
	for c := range t.dups {
		sort.Strings(t.dups[c])
	}
	return t
}

// Load reads a YAML alias file. A missing file yields an empty table.
func Load(path string) (*Table, error) {
	if path == "" {
		return New(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("reading aliases: %w", err)
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing aliases %s: %w", path, err)
	}
	return New(m), nil
}

// Len returns the number of duplicate ids.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.canon)
}

// Canonical returns the canonical form of id, following alias chains. Every
// member of a cycle resolves to the cycle's lexically smallest id. A chain
// longer than maxChain stops at the last id reached.
func (t *Table) Canonical(id string) string {
	if t == nil {
		return id
	}
	path := []string{id}
	seen := map[string]int{id: 0}
	cur := id
	for i := 0; i < maxChain; i++ {
		next, ok := t.canon[cur]
		if !ok {
			return cur
		}
		if at, loop := seen[next]; loop {
			return minID(path[at:])
		}
		seen[next] = len(path)
		path = append(path, next)
		cur = next
	}
	return cur
}

func minID(ids []string) string {
	m := ids[0]
	for _, id := range ids[1:] {
		if id < m {
			m = id
		}
	}
	return m
}

// IsAlias reports whether id is a known duplicate.
func (t *Table) IsAlias(id string) bool {
	if t == nil {
		return false
	}
	_, ok := t.canon[id]
	return ok && t.Canonical(id) != id
}

// Duplicates returns the sorted ids that canonicalize to canonical.
func (t *Table) Duplicates(canonical string) []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.dups[canonical]...)
}

// CanonicalizeLinks rewrites link targets to canonical ids and drops later
// links to a target already seen. An influential flag on any duplicate is
// kept.
func (t *Table) CanonicalizeLinks(links []paper.Link) []paper.Link {
	return t.MergeLinks(links)
}

// MergeLinks concatenates lists, canonicalizing targets and keeping the
// first link per target.
func (t *Table) MergeLinks(lists ...[]paper.Link) []paper.Link {
	var out []paper.Link
	pos := make(map[string]int)
	for _, list := range lists {
		for _, l := range list {
			l.PaperID = t.Canonical(l.PaperID)
			if i, ok := pos[l.PaperID]; ok {
				out[i].IsInfluential = out[i].IsInfluential || l.IsInfluential
				continue
			}
			pos[l.PaperID] = len(out)
			out = append(out, l)
		}
	}
	return out
}
