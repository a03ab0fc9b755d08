package config

import (
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads the configuration at path, which may name either a
// config.yaml or the directory holding one. An empty path yields the
// embedded defaults. Keys absent from the file keep their default
// values; unknown keys and validation failures are errors.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	out := defaultConfig()
	if path == "" {
		return out, nil
	}

	if filepath.Base(path) != ConfigurationName {
		path = filepath.Join(path, ConfigurationName)
	}

	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
