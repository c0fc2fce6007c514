package access

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadPolicyFile reads a YAML role policy.
//
//	roles:
//	  owner:
//	    label: Owner
//	    permissions: [view_financials, view_all_projects]
func LoadPolicyFile(path string) (Policy, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Policy{}, fmt.Errorf("load policy file %s: %w", path, err)
	}

	var p Policy
	if err := k.Unmarshal("", &p); err != nil {
		return Policy{}, fmt.Errorf("decode policy file %s: %w", path, err)
	}
	return p, nil
}

// LoadCatalog builds the catalog from a policy file, or from DefaultPolicy
// when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog(DefaultPolicy())
	}

	p, err := LoadPolicyFile(path)
	if err != nil {
		return nil, err
	}

	c, err := NewCatalog(p)
	if err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}
	return c, nil
}
