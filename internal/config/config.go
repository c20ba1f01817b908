// Package config implements the layered tuning described in §14: a
// built-in default, overridden by an optional YAML file, in turn overridden
// by environment variables, using the same two libraries the rest of the
// corpus reaches for that job (github.com/caarlos0/env/v6 and
// gopkg.in/yaml.v3).
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Limits bounds the growable value, array-data and frame stacks the
// virtual machine allocates at run time (§4.4, §9). The compiler's own
// 16-bit addressing ceilings (constant pool, locals, arity, skip
// displacement, §4.2, §4.3.4) are fixed by the wire format itself and are
// deliberately not part of this struct: relaxing them would require a
// wider operand encoding, not a bigger number here.
type Limits struct {
	// InitialValueStack/MaxValueStack bound the shared value stack that
	// holds locals, call frames' argument regions, and expression temporaries.
	InitialValueStack int `yaml:"initialValueStack" env:"YALA_INITIAL_VALUE_STACK"`
	MaxValueStack     int `yaml:"maxValueStack" env:"YALA_MAX_VALUE_STACK"`

	// InitialArrayStack/MaxArrayStack bound the array-data stack that backs
	// every vector's flattened elements.
	InitialArrayStack int `yaml:"initialArrayStack" env:"YALA_INITIAL_ARRAY_STACK"`
	MaxArrayStack     int `yaml:"maxArrayStack" env:"YALA_MAX_ARRAY_STACK"`

	// InitialFrameStack/MaxFrameStack bound the call-frame stack; MaxFrameStack
	// is also the recursion depth ceiling.
	InitialFrameStack int `yaml:"initialFrameStack" env:"YALA_INITIAL_FRAME_STACK"`
	MaxFrameStack     int `yaml:"maxFrameStack" env:"YALA_MAX_FRAME_STACK"`
}

// Default returns the built-in baseline Limits, the lowest-precedence
// layer of §14's configuration model.
func Default() Limits {
	return Limits{
		InitialValueStack: 256,
		MaxValueStack:     1 << 20,
		InitialArrayStack: 256,
		MaxArrayStack:     1 << 20,
		InitialFrameStack: 64,
		MaxFrameStack:     4096,
	}
}

// Load builds a Limits value by layering, in increasing precedence: the
// built-in Default, an optional YAML document at yamlPath (skipped
// entirely when yamlPath is empty), and process environment variables.
// caarlos0/env leaves a field untouched when its variable is unset, so
// successively applying these two layers over Default implements the
// override chain without any manual merge logic.
func Load(yamlPath string) (Limits, error) {
	l := Default()
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Limits{}, fmt.Errorf("config: reading %s: %w", yamlPath, err)
		}
		if err := yaml.Unmarshal(data, &l); err != nil {
			return Limits{}, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
		}
	}
	if err := env.Parse(&l); err != nil {
		return Limits{}, fmt.Errorf("config: reading environment: %w", err)
	}
	return l, nil
}
