package config

import (
	"fmt"
	"strings"
)

// Sections is a list of Sections.
type Sections []*Section

// GoString formats sects for use with %#v.
func (s Sections) GoString() string {
	var parts []string
	for _, sect := range s {
		parts = append(parts, sect.GoString())
	}

	return strings.Join(parts, ", ")
}

// Section represents a config file section.
type Section struct {
	Name        string
	Options     Options
	Subsections Subsections
}

// GoString formats s for use with %#v.
func (s *Section) GoString() string {
	var opts []string
	for _, o := range s.Options {
		opts = append(opts, o.GoString())
	}

	return fmt.Sprintf("&config.Section{Name:%q, Options:%s, Subsections:%s}",
		s.Name, strings.Join(opts, ", "), s.Subsections.GoString())
}

// IsName returns true if name matches the section's name, case-insensitively.
func (s *Section) IsName(name string) bool {
	return strings.EqualFold(s.Name, name)
}

// Subsection returns an existing subsection with the given name, or
// creates a new one.
func (s *Section) Subsection(name string) *Subsection {
	for _, ss := range s.Subsections {
		if ss.Name == name {
			return ss
		}
	}

	ss := &Subsection{Name: name}
	s.Subsections = append(s.Subsections, ss)
	return ss
}

// HasSubsection returns true if a subsection with the given name exists.
func (s *Section) HasSubsection(name string) bool {
	for _, ss := range s.Subsections {
		if ss.Name == name {
			return true
		}
	}

	return false
}

// RemoveSubsection removes a subsection by name.
func (s *Section) RemoveSubsection(name string) *Section {
	result := Subsections{}
	for _, ss := range s.Subsections {
		if ss.Name != name {
			result = append(result, ss)
		}
	}

	s.Subsections = result
	return s
}

// Option returns the value of the last option with the given key.
func (s *Section) Option(key string) string {
	return s.Options.Get(key)
}

// GetOption is an alias of Option.
func (s *Section) GetOption(key string) string {
	return s.Option(key)
}

// OptionAll returns the values of all options with the given key.
func (s *Section) OptionAll(key string) []string {
	return s.Options.GetAll(key)
}

// GetAllOptions is an alias of OptionAll.
func (s *Section) GetAllOptions(key string) []string {
	return s.OptionAll(key)
}

// HasOption returns true if an option with the given key exists.
func (s *Section) HasOption(key string) bool {
	return s.Options.Has(key)
}

// AddOption appends a new option with the given key and value.
func (s *Section) AddOption(key string, value string) *Section {
	s.Options = append(s.Options, &Option{key, value})
	return s
}

// SetOption removes all options with the given key and appends one new
// option per given value.
func (s *Section) SetOption(key string, value ...string) *Section {
	s.Options = s.Options.withoutKey(key)
	for _, v := range value {
		s.Options = append(s.Options, &Option{key, v})
	}

	return s
}

// RemoveOption removes all options with the given key.
func (s *Section) RemoveOption(key string) *Section {
	s.Options = s.Options.withoutKey(key)
	return s
}

// Subsections is a list of Subsections.
type Subsections []*Subsection

// GoString formats ss for use with %#v.
func (ss Subsections) GoString() string {
	var parts []string
	for _, s := range ss {
		parts = append(parts, s.GoString())
	}

	return strings.Join(parts, ", ")
}

// Subsection represents a `[section "name"]` block.
type Subsection struct {
	Name    string
	Options Options
}

// GoString formats s for use with %#v.
func (s *Subsection) GoString() string {
	var opts []string
	for _, o := range s.Options {
		opts = append(opts, o.GoString())
	}

	return fmt.Sprintf("&config.Subsection{Name:%q, Options:%s}", s.Name, strings.Join(opts, ", "))
}

// IsName returns true if name matches the subsection's name, case-sensitively.
func (s *Subsection) IsName(name string) bool {
	return s.Name == name
}

// Option returns the value of the last option with the given key.
func (s *Subsection) Option(key string) string {
	return s.Options.Get(key)
}

// GetOption is an alias of Option.
func (s *Subsection) GetOption(key string) string {
	return s.Option(key)
}

// OptionAll returns the values of all options with the given key.
func (s *Subsection) OptionAll(key string) []string {
	return s.Options.GetAll(key)
}

// GetAllOptions is an alias of OptionAll.
func (s *Subsection) GetAllOptions(key string) []string {
	return s.OptionAll(key)
}

// HasOption returns true if an option with the given key exists.
func (s *Subsection) HasOption(key string) bool {
	return s.Options.Has(key)
}

// AddOption appends a new option with the given key and value.
func (s *Subsection) AddOption(key string, value string) *Subsection {
	s.Options = append(s.Options, &Option{key, value})
	return s
}

// SetOption overwrites, in place, the values of existing options with the
// given key using the given values in order. Excess existing occurrences
// are dropped; excess given values are appended at the end.
func (s *Subsection) SetOption(key string, value ...string) *Subsection {
	result := make(Options, 0, len(s.Options))
	used := 0
	for _, o := range s.Options {
		if o.IsKey(key) {
			if used < len(value) {
				result = append(result, &Option{key, value[used]})
				used++
			}
			continue
		}

		result = append(result, o)
	}

	for ; used < len(value); used++ {
		result = append(result, &Option{key, value[used]})
	}

	s.Options = result
	return s
}

// RemoveOption removes all options with the given key.
func (s *Subsection) RemoveOption(key string) *Subsection {
	s.Options = s.Options.withoutKey(key)
	return s
}

func (opts Options) withoutKey(key string) Options {
	result := make(Options, 0, len(opts))
	for _, o := range opts {
		if !o.IsKey(key) {
			result = append(result, o)
		}
	}

	return result
}
