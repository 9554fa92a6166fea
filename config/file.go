package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var errUnknownKey = errors.New("unknown config key")

// LoadFile reads a yaml file whose keys are flag names, e.g.
//
//	driver: serial
//	baud: 57600
//	framing: binary
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return values, nil
}

// ApplyFile sets every flag named in values that was not given on the command line.
func ApplyFile(fs *pflag.FlagSet, values map[string]any) error {
	for key, value := range values {
		flag := fs.Lookup(key)
		if flag == nil || key == "config" {
			return fmt.Errorf("%q: %w", key, errUnknownKey)
		}
		if flag.Changed {
			continue
		}
		if err := fs.Set(key, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
	}
	return nil
}
