package config

import (
	"fmt"
	"strings"
)

// Option defines a key/value pair in a section or subsection.
type Option struct {
	Key, Value string
}

// Options is a list of Options.
type Options []*Option

// GoString formats o for use with %#v.
func (o *Option) GoString() string {
	return fmt.Sprintf("&config.Option{Key:%q, Value:%q}", o.Key, o.Value)
}

// IsKey returns true if the option key matches name, case-insensitively.
func (o *Option) IsKey(name string) bool {
	return strings.EqualFold(o.Key, name)
}

// Has returns true if the list contains an option with the given key.
func (opts Options) Has(key string) bool {
	for _, o := range opts {
		if o.IsKey(key) {
			return true
		}
	}

	return false
}

// Get returns the value of the last option with the given key, or the
// empty string if no such option exists.
func (opts Options) Get(key string) string {
	for i := len(opts) - 1; i >= 0; i-- {
		if opts[i].IsKey(key) {
			return opts[i].Value
		}
	}

	return ""
}

// GetAll returns the values of all options with the given key, in the
// order they were defined.
func (opts Options) GetAll(key string) []string {
	result := []string{}
	for _, o := range opts {
		if o.IsKey(key) {
			result = append(result, o.Value)
		}
	}

	return result
}
