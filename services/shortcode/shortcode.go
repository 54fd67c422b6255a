package shortcode

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed definitions.yaml
var definitionsYAML []byte

type Kind string

const (
	KindInline Kind = "inline"
	KindBlock  Kind = "block"
)

// childrenField names the body of a block shortcode. It is never passed as an argument.
const childrenField = "children"

var ErrInvalidShortcode = errors.New("invalid shortcode")

// ValidationError describes the first problem found in a piece of content.
type ValidationError struct {
	Shortcode string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Shortcode == "" {
		return fmt.Sprintf("invalid shortcode: %s", e.Reason)
	}
	return fmt.Sprintf("invalid shortcode %q: %s", e.Shortcode, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidShortcode
}

type Field struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Options  []string `yaml:"options"`
	Default  string   `yaml:"default"`
}

type Definition struct {
	Name   string  `yaml:"name"`
	Label  string  `yaml:"label"`
	Kind   Kind    `yaml:"kind"`
	Fields []Field `yaml:"fields"`
}

// arguments are the fields passed inside the opening tag, in declaration order.
func (d Definition) arguments() []Field {
	arguments := make([]Field, 0, len(d.Fields))
	for _, field := range d.Fields {
		if field.Name != childrenField {
			arguments = append(arguments, field)
		}
	}
	return arguments
}

func (d Definition) field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

type definitionsFile struct {
	Shortcodes []Definition `yaml:"shortcodes"`
}

// Registry holds the shortcodes content authors may use.
type Registry struct {
	definitions []Definition
	byName      map[string]int
}

// Load builds the registry from the shortcode definitions shipped with the binary.
func Load() (*Registry, error) {
	return Parse(definitionsYAML)
}

func Parse(data []byte) (*Registry, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse shortcode definitions: %w", err)
	}

	registry := &Registry{byName: make(map[string]int, len(file.Shortcodes))}
	for _, definition := range file.Shortcodes {
		if definition.Name == "" {
			return nil, errors.New("shortcode definition without a name")
		}
		if definition.Kind != KindInline && definition.Kind != KindBlock {
			return nil, fmt.Errorf("shortcode %s has unknown kind %q", definition.Name, definition.Kind)
		}
		if _, ok := registry.byName[definition.Name]; ok {
			return nil, fmt.Errorf("shortcode %s defined twice", definition.Name)
		}
		registry.byName[definition.Name] = len(registry.definitions)
		registry.definitions = append(registry.definitions, definition)
	}
	return registry, nil
}

func (r *Registry) Definitions() []Definition {
	return slices.Clone(r.definitions)
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.definitions[i], true
}

// {{< name args >}} or {{% name args %}}, with an optional leading slash for closing tags.
var tagPattern = regexp.MustCompile(`(?s)\{\{([<%])\s*(/?)\s*([A-Za-z0-9_-]+)(.*?)\s*[>%]\}\}`)

type tag struct {
	name    string
	closing bool
	args    string
	start   int
	end     int
}

func findTags(text string) []tag {
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	tags := make([]tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, tag{
			closing: m[5] > m[4],
			name:    text[m[6]:m[7]],
			args:    text[m[8]:m[9]],
			start:   m[0],
			end:     m[1],
		})
	}
	return tags
}

// Validate checks every shortcode in text against its definition and
// reports the first problem found.
func (r *Registry) Validate(text string) error {
	type open struct {
		definition Definition
		bodyStart  int
	}
	var stack []open

	for _, t := range findTags(text) {
		definition, ok := r.Lookup(t.name)
		if !ok {
			return &ValidationError{Shortcode: t.name, Reason: "unknown shortcode"}
		}

		if t.closing {
			if len(stack) == 0 || stack[len(stack)-1].definition.Name != t.name {
				return &ValidationError{Shortcode: t.name, Reason: "closing tag without a matching opening tag"}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if children, ok := definition.field(childrenField); ok && children.Required {
				if strings.TrimSpace(text[top.bodyStart:t.start]) == "" {
					return &ValidationError{Shortcode: t.name, Reason: "content is required"}
				}
			}
			continue
		}

		if err := validateArguments(definition, t.args); err != nil {
			return err
		}
		if definition.Kind == KindBlock {
			stack = append(stack, open{definition: definition, bodyStart: t.end})
		}
	}

	if len(stack) > 0 {
		return &ValidationError{Shortcode: stack[len(stack)-1].definition.Name, Reason: "missing closing tag"}
	}
	return nil
}

func validateArguments(definition Definition, raw string) error {
	named, positional, err := parseArguments(raw)
	if err != nil {
		return &ValidationError{Shortcode: definition.Name, Reason: err.Error()}
	}

	fields := definition.arguments()
	if len(positional) > len(fields) {
		return &ValidationError{
			Shortcode: definition.Name,
			Reason:    fmt.Sprintf("takes at most %d arguments, got %d", len(fields), len(positional)),
		}
	}

	values := make(map[string]string, len(fields))
	for i, value := range positional {
		values[fields[i].Name] = value
	}
	for name, value := range named {
		if name == childrenField {
			return &ValidationError{Shortcode: definition.Name, Reason: "content cannot be passed as an argument"}
		}
		if _, ok := definition.field(name); !ok {
			return &ValidationError{Shortcode: definition.Name, Reason: fmt.Sprintf("unknown field %q", name)}
		}
		values[name] = value
	}

	for _, field := range fields {
		value, ok := values[field.Name]
		if field.Required && (!ok || strings.TrimSpace(value) == "") {
			return &ValidationError{Shortcode: definition.Name, Reason: fmt.Sprintf("field %q is required", field.Name)}
		}
		if ok && len(field.Options) > 0 && !slices.Contains(field.Options, value) {
			return &ValidationError{
				Shortcode: definition.Name,
				Reason:    fmt.Sprintf("field %q must be one of %s, got %q", field.Name, strings.Join(field.Options, ", "), value),
			}
		}
	}
	return nil
}

// parseArguments splits shortcode arguments. They are either all named
// (key="value") or all positional.
func parseArguments(raw string) (map[string]string, []string, error) {
	named := map[string]string{}
	var positional []string

	rest := strings.TrimSpace(raw)
	for rest != "" {
		var key string
		if rest[0] != '"' && rest[0] != '`' {
			end := strings.IndexAny(rest, " \t\n=")
			if end >= 0 && rest[end] == '=' {
				key = rest[:end]
				rest = rest[end+1:]
			}
		}

		value, remaining, err := readValue(rest)
		if err != nil {
			return nil, nil, err
		}
		rest = strings.TrimSpace(remaining)

		if key != "" {
			named[key] = value
		} else {
			positional = append(positional, value)
		}
	}

	if len(named) > 0 && len(positional) > 0 {
		return nil, nil, errors.New("cannot mix named and positional arguments")
	}
	return named, positional, nil
}

func readValue(s string) (string, string, error) {
	if s == "" {
		return "", "", nil
	}
	if quote := s[0]; quote == '"' || quote == '`' {
		end := strings.IndexByte(s[1:], quote)
		if end < 0 {
			return "", "", errors.New("unterminated quoted argument")
		}
		return s[1 : end+1], s[end+2:], nil
	}
	end := strings.IndexAny(s, " \t\n")
	if end < 0 {
		return s, "", nil
	}
	return s[:end], s[end:], nil
}

// Strip removes shortcode markup from text, keeping the content of block
// shortcodes, and collapses the remaining whitespace.
func (r *Registry) Strip(text string) string {
	return strings.Join(strings.Fields(tagPattern.ReplaceAllString(text, " ")), " ")
}
