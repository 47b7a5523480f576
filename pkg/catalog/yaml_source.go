package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlSource loads plans from a YAML file on disk.
// The file is read on every Load call so that a Catalog rebuild picks up
// edits, but the Catalog itself never reloads at runtime.
type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source backed by a YAML plan file.
//
// Expected file layout:
//
//	plans:
//	  - id: free
//	    name: Free
//	    is_free: true
//	    monthly_credits: 100
//	  - id: pro
//	    name: Pro
//	    monthly_credits: 5000
//	    interval: monthly
//	    price:
//	      amount: 1500
//	      currency: USD
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

type yamlPlanFile struct {
	Plans []Plan `yaml:"plans"`
}

// Load reads and parses the plan file, keying plans by their ID.
func (s *yamlSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var file yamlPlanFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, plan := range file.Plans {
		if _, exists := plans[plan.ID]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate plan id %q in %s", plan.ID, s.path))
		}
		plans[plan.ID] = plan
	}

	return plans, nil
}
