// Package concepts holds the payslip concept registry and the code
// categorisation rule.
package concepts

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/Aashish23092/payslip-extractor/dto"
	"gopkg.in/yaml.v3"
)

// DeductionThreshold is the first concept code that is a deduction.
const DeductionThreshold = 1000

//go:embed concepts.yaml
var embeddedRegistry []byte

var codePattern = regexp.MustCompile(`^\d{3,4}$`)

// Categorize classifies a code by the numeric threshold alone. Registry
// membership plays no part. ok is false when code is not a decimal integer,
// in which case the code is treated as a deduction.
func Categorize(code string) (dto.Category, bool) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return dto.CategoryDeduction, false
	}
	if n < DeductionThreshold {
		return dto.CategoryEarning, true
	}
	return dto.CategoryDeduction, true
}

// Registry maps concept codes to their definitions. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	version  string
	concepts map[string]dto.ConceptDefinition
}

type registryFile struct {
	Version  string                  `yaml:"version"`
	Concepts []dto.ConceptDefinition `yaml:"concepts"`
}

// Default returns the registry compiled into the binary.
func Default() (*Registry, error) {
	return Parse(embeddedRegistry)
}

// MustDefault is Default for package-level wiring and tests.
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

// Load reads a registry file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read concept registry %s: %w", path, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("concept registry %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes and validates a YAML registry document.
func Parse(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse concept registry: %w", err)
	}
	return New(f.Version, f.Concepts)
}

// New builds a registry from definitions. Codes must be 3–4 digits, unique,
// and declare the category the threshold rule assigns them.
func New(version string, defs []dto.ConceptDefinition) (*Registry, error) {
	reg := &Registry{
		version:  version,
		concepts: make(map[string]dto.ConceptDefinition, len(defs)),
	}
	for _, def := range defs {
		if !codePattern.MatchString(def.Code) {
			return nil, fmt.Errorf("concept %q: code must be 3 or 4 digits", def.Code)
		}
		if _, dup := reg.concepts[def.Code]; dup {
			return nil, fmt.Errorf("concept %s: duplicate code", def.Code)
		}
		category, _ := Categorize(def.Code)
		if def.Category == "" {
			def.Category = category
		}
		if def.Category != category {
			return nil, fmt.Errorf("concept %s: declared %s but code falls in %s range", def.Code, def.Category, category)
		}
		reg.concepts[def.Code] = def
	}
	return reg, nil
}

// Version is the registry data version.
func (r *Registry) Version() string {
	return r.version
}

// Resolve looks up a code.
func (r *Registry) Resolve(code string) (dto.ConceptDefinition, bool) {
	def, ok := r.concepts[code]
	return def, ok
}

// IsKnown reports whether code is in the registry.
func (r *Registry) IsKnown(code string) bool {
	_, ok := r.concepts[code]
	return ok
}

// IsBonus reports whether code is a registered bonus concept.
func (r *Registry) IsBonus(code string) bool {
	return r.concepts[code].Bonus
}

// Len returns the number of registered concepts.
func (r *Registry) Len() int {
	return len(r.concepts)
}

// All returns the definitions ordered by numeric code.
func (r *Registry) All() []dto.ConceptDefinition {
	defs := make([]dto.ConceptDefinition, 0, len(r.concepts))
	for _, def := range r.concepts {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		a, _ := strconv.Atoi(defs[i].Code)
		b, _ := strconv.Atoi(defs[j].Code)
		return a < b
	})
	return defs
}
