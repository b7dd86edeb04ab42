package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// NewFlagSet returns a flag set whose dashed flag names bind to the
// underscored config keys, so --sources-file overrides sources_file.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
	})
	fs.String("sources-file", "", "path to the sources YAML/JSON file")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("storage-type", "", "rate-limit state backend (bbolt, sqlite, none)")
	fs.String("storage-path", "", "path of the rate-limit state database")
	return fs
}
