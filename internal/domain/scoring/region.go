package scoring

import "strings"

// Canonical trims region and applies the alias table. It returns an empty
// string for blank input.
func (e *Engine) Canonical(region string) string {
	name := strings.TrimSpace(region)
	if name == "" {
		return ""
	}
	if target, ok := e.policy.Aliases[name]; ok {
		return target
	}
	return name
}

// RegionScore resolves a free-form region name to its bucket points.
//
// Resolution order: alias substitution, exact bucket membership, then a
// one-directional prefix fallback where either a member starts with the input
// or the input starts with the member's name before any "(" qualifier.
// Substring containment is never used: "광주" must not match "경기도 광주".
func (e *Engine) RegionScore(region string) int {
	name := e.Canonical(region)
	if name == "" {
		return 0
	}

	if points, ok := e.exact[name]; ok {
		return points
	}

	for _, b := range e.policy.Buckets {
		for _, member := range b.Regions {
			if strings.HasPrefix(member, name) {
				return b.Points
			}
			if base := baseName(member); base != "" && strings.HasPrefix(name, base) {
				return b.Points
			}
		}
	}
	return 0
}

// baseName strips a parenthetical qualifier: "강원도(영동)" -> "강원도".
func baseName(member string) string {
	before, _, _ := strings.Cut(member, "(")
	return strings.TrimSpace(before)
}
