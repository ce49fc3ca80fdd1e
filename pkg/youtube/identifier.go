package youtube

import (
	"strings"

	"github.com/samber/lo"
)

// Identifier addresses one resource or a list of resources.
// Build it with Single or Many; the zero value addresses nothing.
type Identifier struct {
	ids  []string
	many bool
}

// Single addresses one resource.
func Single(id string) Identifier {
	return Identifier{ids: clean([]string{id})}
}

// Many addresses a list of resources, queried in batches.
func Many(ids ...string) Identifier {
	return Identifier{ids: clean(ids), many: true}
}

// IDs returns the trimmed, non-empty ids in input order.
func (i Identifier) IDs() []string {
	return append([]string(nil), i.ids...)
}

// IsMany reports whether the identifier was built with Many.
func (i Identifier) IsMany() bool {
	return i.many
}

// Empty reports whether no usable id is left.
func (i Identifier) Empty() bool {
	return len(i.ids) == 0
}

func clean(ids []string) []string {
	return lo.Compact(lo.Map(ids, func(id string, _ int) string {
		return strings.TrimSpace(id)
	}))
}
