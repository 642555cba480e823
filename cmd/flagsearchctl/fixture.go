package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	flagsearch "github.com/kailas-cloud/flagsearch/pkg/sdk"
)

// fixture is the YAML seed file layout.
type fixture struct {
	Features []fixtureFeature `yaml:"features"`
}

type fixtureFeature struct {
	Name         string                        `yaml:"name"`
	Type         string                        `yaml:"type"`
	Project      string                        `yaml:"project"`
	Description  string                        `yaml:"description"`
	CreatedAt    time.Time                     `yaml:"createdAt"`
	Archived     bool                          `yaml:"archived"`
	Tags         []string                      `yaml:"tags"` // type:value
	Environments map[string]fixtureEnvironment `yaml:"environments"`
}

type fixtureEnvironment struct {
	Enabled    bool       `yaml:"enabled"`
	LastSeenAt *time.Time `yaml:"lastSeenAt"`
}

func loadFixture(path string) ([]flagsearch.FeatureInput, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return parseFixture(data)
}

func parseFixture(data []byte) ([]flagsearch.FeatureInput, error) {
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	inputs := make([]flagsearch.FeatureInput, 0, len(fx.Features))
	for i := range fx.Features {
		f := &fx.Features[i]
		in := flagsearch.FeatureInput{
			Name:        f.Name,
			Type:        f.Type,
			Project:     f.Project,
			Description: f.Description,
			CreatedAt:   f.CreatedAt,
			Archived:    f.Archived,
		}
		for _, raw := range f.Tags {
			tag, err := domfeature.ParseTag(raw)
			if err != nil {
				return nil, fmt.Errorf("feature %q: %w", f.Name, err)
			}
			in.Tags = append(in.Tags, flagsearch.Tag{Type: tag.Type(), Value: tag.Value()})
		}
		if len(f.Environments) > 0 {
			in.Environments = make(map[string]flagsearch.EnvironmentState, len(f.Environments))
			for env, st := range f.Environments {
				in.Environments[env] = flagsearch.EnvironmentState{Enabled: st.Enabled, LastSeenAt: st.LastSeenAt}
			}
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
