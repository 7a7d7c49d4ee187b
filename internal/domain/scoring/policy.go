package scoring

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed policy.schema.json
var policySchema string

// RegionBucket groups regions that share a distance score.
type RegionBucket struct {
	Name    string   `yaml:"name" json:"name"`
	Points  int      `yaml:"points" json:"points"`
	Regions []string `yaml:"regions" json:"regions"`
}

// RegionPolicy is the institution-owned region table: buckets plus aliases
// from colloquial names to canonical bucket members.
type RegionPolicy struct {
	Buckets []RegionBucket    `yaml:"buckets" json:"buckets"`
	Aliases map[string]string `yaml:"aliases" json:"aliases"`
}

// LoadRegionPolicy decodes a YAML policy document, checks it against the
// embedded schema and validates bucket invariants.
func LoadRegionPolicy(r io.Reader) (RegionPolicy, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return RegionPolicy{}, fmt.Errorf("read region policy: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return RegionPolicy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(policySchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return RegionPolicy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return RegionPolicy{}, fmt.Errorf("%w: %s", ErrInvalidPolicy, strings.Join(msgs, "; "))
	}

	var p RegionPolicy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return RegionPolicy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	p = p.normalized()
	if err := p.Validate(); err != nil {
		return RegionPolicy{}, err
	}
	return p, nil
}

// LoadEngine builds an engine from the policy file at path. An empty path
// returns the engine over the bundled tables.
func LoadEngine(path string) (*Engine, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region policy: %w", err)
	}
	defer f.Close()

	p, err := LoadRegionPolicy(f)
	if err != nil {
		return nil, fmt.Errorf("load region policy %s: %w", path, err)
	}
	return NewEngine(WithRegionPolicy(p)), nil
}

// Validate checks that bucket members are mutually exclusive, that points lie
// in [0, 30] and that every alias resolves to a bucket member.
func (p RegionPolicy) Validate() error {
	if len(p.Buckets) == 0 {
		return fmt.Errorf("%w: no buckets", ErrInvalidPolicy)
	}

	owner := make(map[string]string)
	for _, b := range p.Buckets {
		if b.Points < 0 || b.Points > maxDistanceScore {
			return fmt.Errorf("%w: bucket %q points %d out of range", ErrInvalidPolicy, b.Name, b.Points)
		}
		for _, r := range b.Regions {
			if r == "" {
				return fmt.Errorf("%w: bucket %q has an empty region", ErrInvalidPolicy, b.Name)
			}
			if prev, dup := owner[r]; dup {
				return fmt.Errorf("%w: region %q listed in %q and %q", ErrInvalidPolicy, r, prev, b.Name)
			}
			owner[r] = b.Name
		}
	}

	for alias, target := range p.Aliases {
		if alias == "" {
			return fmt.Errorf("%w: empty alias", ErrInvalidPolicy)
		}
		if _, ok := owner[target]; !ok {
			return fmt.Errorf("%w: alias %q targets unknown region %q", ErrInvalidPolicy, alias, target)
		}
		if _, shadow := owner[alias]; shadow {
			return fmt.Errorf("%w: alias %q shadows a bucket member", ErrInvalidPolicy, alias)
		}
	}
	return nil
}

// normalized trims whitespace from every name so lookups match trimmed input.
func (p RegionPolicy) normalized() RegionPolicy {
	out := RegionPolicy{
		Buckets: make([]RegionBucket, len(p.Buckets)),
		Aliases: make(map[string]string, len(p.Aliases)),
	}
	for i, b := range p.Buckets {
		regions := make([]string, len(b.Regions))
		for j, r := range b.Regions {
			regions[j] = strings.TrimSpace(r)
		}
		out.Buckets[i] = RegionBucket{Name: strings.TrimSpace(b.Name), Points: b.Points, Regions: regions}
	}
	for k, v := range p.Aliases {
		out.Aliases[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func (p RegionPolicy) clone() RegionPolicy {
	out := RegionPolicy{
		Buckets: make([]RegionBucket, len(p.Buckets)),
		Aliases: maps.Clone(p.Aliases),
	}
	if out.Aliases == nil {
		out.Aliases = map[string]string{}
	}
	for i, b := range p.Buckets {
		out.Buckets[i] = RegionBucket{
			Name:    b.Name,
			Points:  b.Points,
			Regions: append([]string(nil), b.Regions...),
		}
	}
	return out
}
