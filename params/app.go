package params

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const AppName = "densitymap"

// EnvPrefix prefixes environment overrides, eg. DENSITYMAP_DATA_SOURCE.
const EnvPrefix = "DENSITYMAP"

// DefaultConfigFile is the optional YAML config file read at startup.
var DefaultConfigFile = func() string {
	home, err := homedir.Dir()
	if err != nil {
		return "." + AppName + ".yaml"
	}
	return filepath.Join(home, "."+AppName+".yaml")
}()
