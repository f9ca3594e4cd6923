package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Manifest lists document locators for the acquire stage.
type Manifest struct {
	URLs []string `yaml:"urls"`
}

// LoadManifest reads the YAML manifest at path. Blank entries are dropped;
// order is kept as written.
func LoadManifest(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInputMissing, "read manifest", err)
		}
		return nil, domain.WrapError(domain.ErrIO, "read manifest", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, domain.WrapError(domain.ErrParse, "decode manifest", fmt.Errorf("%s: %w", path, err))
	}
	urls := make([]string, 0, len(m.URLs))
	for _, u := range m.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
