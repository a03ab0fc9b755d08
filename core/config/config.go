// Package config loads and validates the shell's YAML configuration.
package config

import (
	_ "embed"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the file name probed inside a config directory.
const ConfigurationName = "config.yaml"

type Configuration struct {
	// Prompt is rendered before the edit buffer. Supports \u (user),
	// \h (host) and \w (working directory, home shown as ~).
	Prompt string `json:"prompt" validate:"required"`

	// SearchPath lists the directories probed, in order, when
	// resolving a bare command name.
	SearchPath []string `json:"search_path" validate:"required,min=1,dive,required"`

	// PollIntervalMillis bounds how long the editor blocks waiting for
	// a single key event.
	PollIntervalMillis int `json:"poll_interval_millis" validate:"gte=1,lte=10000"`

	// CommandLog, when set, receives a JSON-lines record of every
	// submitted command. Empty disables logging.
	CommandLog string `json:"command_log"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the embedded configuration.
func Default() *Configuration {
	return defaultConfig()
}
