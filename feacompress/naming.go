package feacompress

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/featools/fea"
)

// maxCounter bounds the disambiguation counter of a Namer.
const maxCounter = 1 << 20

// Namer hands out unique names of the form "<base>_<n>". It keeps an ordered
// set of names in use, which may be seeded with names already present in a
// table.
type Namer struct {
	used  *treeset.Set
	limit int
}

// NewNamer creates a namer which will never hand out any of the given names.
func NewNamer(existing ...string) *Namer {
	n := &Namer{used: treeset.NewWithStringComparator(), limit: maxCounter}
	for _, name := range existing {
		n.Reserve(name)
	}
	return n
}

// Reserve marks a name as used. Empty names are ignored.
func (n *Namer) Reserve(name string) {
	if name != "" {
		n.used.Add(name)
	}
}

// Assign returns "<base>_<n>" for the smallest n ≥ 1 not yet in use, and
// marks it as used. It fails with a NamingExhaustion error if no counter
// value up to the namer's limit is free.
func (n *Namer) Assign(base string) (string, error) {
	for i := 1; i <= n.limit; i++ {
		name := base + "_" + strconv.Itoa(i)
		if !n.used.Contains(name) {
			n.used.Add(name)
			return name, nil
		}
	}
	return "", fea.Exhausted("", "naming", "no free name for base %q", base)
}

// names lists all names in use, sorted.
func (n *Namer) names() []string {
	used := make([]string, 0, n.used.Size())
	for _, v := range n.used.Values() {
		used = append(used, v.(string))
	}
	return used
}

// joinTags joins the tags of a feature set in sorted order.
func joinTags(tags *treeset.Set, sep string) string {
	var sb strings.Builder
	for i, v := range tags.Values() {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(v.(string))
	}
	return sb.String()
}

// splitName splits a name of the form "<base>_<n>" into base and counter.
// Names without a numeric suffix have counter 0.
func splitName(name string) (string, int) {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return name, 0
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return name, 0
	}
	return name[:i], n
}

// compareNames orders names by base, then by numeric counter, so that
// "a_2" sorts before "a_10".
func compareNames(a, b string) int {
	ba, na := splitName(a)
	bb, nb := splitName(b)
	if c := strings.Compare(ba, bb); c != 0 {
		return c
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	}
	return 0
}

func existingNames(t *fea.Table) []string {
	var names []string
	for _, l := range t.Lookups {
		names = append(names, l.Name)
	}
	for _, f := range t.Features {
		for _, l := range f.Lookups() {
			names = append(names, l.Name)
		}
	}
	return names
}

func existingClassNames(t *fea.Table) []string {
	names := t.Classes.Names()
	for _, f := range t.Features {
		names = append(names, f.Classes.Names()...)
	}
	return names
}

func describe(features *treeset.Set) string {
	return fmt.Sprintf("[%s]", joinTags(features, " "))
}
