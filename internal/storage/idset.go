package storage

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// FilterFile is the name of the exclusion set file.
const FilterFile = "paperIds.filter"

// IDSet is a set of paper ids persisted one per line.
type IDSet map[string]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether it was new.
func (s IDSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s IDSet) Remove(id string) bool {
	if !s.Has(id) {
		return false
	}
	delete(s, id)
	return true
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadIDSet reads a line-oriented id file. Blank lines are ignored and a
// missing file reads as an empty set.
func ReadIDSet(path string) (IDSet, error) {
	set := make(IDSet)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("opening id file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			set.Add(id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading id file: %w", err)
	}
	return set, nil
}

// WriteIDSet replaces path with the sorted ids of set, one per line.
func WriteIDSet(path string, set IDSet) error {
	var b strings.Builder
	for _, id := range set.Sorted() {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return WriteFileAtomic(path, []byte(b.String()), 0644)
}
