// Package connection resolves which MongoDB deployment, database and
// collection an appender writes to.
package connection

import (
	"os"
	"strings"
)

// DefaultEnvPrefix prefixes environment variables holding named connection strings.
const DefaultEnvPrefix = "LOGMONGO_CONNSTR_"

// Registry looks up connection strings registered under a name.
type Registry interface {
	Lookup(name string) (string, bool)
}

// MapRegistry is a Registry backed by a map, typically the
// connection_strings configuration section. Names are case-insensitive.
type MapRegistry map[string]string

// NewMapRegistry copies entries into a MapRegistry with normalized names.
func NewMapRegistry(entries map[string]string) MapRegistry {
	r := make(MapRegistry, len(entries))
	for name, value := range entries {
		r[strings.ToLower(name)] = value
	}
	return r
}

func (r MapRegistry) Lookup(name string) (string, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	v, ok := r[strings.ToLower(name)]
	return v, ok
}

// EnvRegistry reads connection strings from environment variables named
// Prefix followed by the upper-cased name, with '-' and '.' replaced by '_'.
type EnvRegistry struct {
	Prefix string
}

// VariableName returns the environment variable consulted for name.
func (r EnvRegistry) VariableName(name string) string {
	prefix := r.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	key := strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(name))
	return prefix + key
}

func (r EnvRegistry) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	return os.LookupEnv(r.VariableName(name))
}

// ChainRegistry consults registries in order; the first hit wins.
type ChainRegistry []Registry

func (c ChainRegistry) Lookup(name string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if v, ok := r.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}
