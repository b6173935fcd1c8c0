package cmd

import (
	"fmt"
	"os"

	aybv1 "github.com/djcass44/all-your-arch/pkg/api/v1"
	"github.com/djcass44/all-your-arch/pkg/repository"
	"k8s.io/apimachinery/pkg/util/yaml"
)

const flagConfig = "config"

func readConfig(s string) (aybv1.Build, error) {
	f, err := os.Open(s)
	if err != nil {
		return aybv1.Build{}, err
	}
	defer f.Close()

	var config aybv1.Build
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&config); err != nil {
		return aybv1.Build{}, err
	}
	if err := config.Validate(); err != nil {
		return aybv1.Build{}, fmt.Errorf("validating %s: %w", s, err)
	}
	return config, nil
}

// repositoryOptions converts the configuration into index options.
func repositoryOptions(cfg aybv1.Build) []repository.Option {
	return []repository.Option{
		repository.WithStrict(cfg.Spec.Strict),
	}
}
