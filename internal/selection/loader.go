package selection

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/massalia/crawler/internal/config"
)

// Load reads selection criteria from a YAML file. A missing or empty
// file yields the defaults; malformed YAML is a configuration error.
func Load(path string) (*Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, &config.ConfigError{Path: path, Reason: fmt.Sprintf("read file: %v", err)}
	}

	criteria := Default()
	if err := yaml.Unmarshal(data, criteria); err != nil {
		return nil, &config.ConfigError{Path: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	if criteria.CategoryMapping.Default == "" {
		criteria.CategoryMapping.Default = "communaute"
	}
	if len(criteria.RequiredFields) == 0 {
		criteria.RequiredFields = []string{"name", "date"}
	}
	criteria.now = time.Now

	return criteria, nil
}
