package plan

import (
	"context"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source reading the catalog from a YAML file:
//
//	plans:
//	  - id: free
//	    name: Free
//	    price: {amount: 0, currency: BRL}
//	    interval: none
//	    limits:
//	      contacts: 100
//	      groups: 3
//	      monthlyMessages: 50
//	  - id: price_starter_monthly
//	    name: Starter
//	    ...
//	    limits:
//	      groups: unlimited
//
// The file is re-read on every Load, so catalogs can be reloaded by
// rebuilding the Catalog.
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(ctx context.Context) ([]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return doc.Plans, nil
}
