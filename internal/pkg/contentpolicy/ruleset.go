package contentpolicy

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed default_ruleset.yaml
var defaultRuleset []byte

// Ruleset is the data-driven word list, keyed by language code
type Ruleset struct {
	Languages map[string][]string `yaml:"languages"`
}

// ParseRuleset decodes a YAML ruleset
func ParseRuleset(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse content ruleset: %w", err)
	}
	if len(rs.Languages) == 0 {
		return nil, errors.New("content ruleset has no languages")
	}
	return &rs, nil
}

// DefaultRuleset returns the ruleset compiled into the binary
func DefaultRuleset() *Ruleset {
	rs, err := ParseRuleset(defaultRuleset)
	if err != nil {
		panic(fmt.Sprintf("embedded content ruleset is invalid: %v", err))
	}
	return rs
}

// LoadRuleset reads the ruleset at path. When the file does not exist the embedded
// default is returned and fromFile is false.
func LoadRuleset(path string) (rs *Ruleset, fromFile bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultRuleset(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read content ruleset: %w", err)
	}

	rs, err = ParseRuleset(data)
	if err != nil {
		return nil, false, err
	}
	return rs, true, nil
}

// Locales lists the language codes of the ruleset in sorted order
func (r *Ruleset) Locales() []string {
	locales := make([]string, 0, len(r.Languages))
	for code := range r.Languages {
		locales = append(locales, code)
	}
	sort.Strings(locales)
	return locales
}

// Words returns the words of the given locales, or of all locales when none are given
func (r *Ruleset) Words(locales ...string) []string {
	if len(locales) == 0 {
		locales = r.Locales()
	}

	var words []string
	for _, code := range locales {
		words = append(words, r.Languages[code]...)
	}
	return words
}
