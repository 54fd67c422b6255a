package content

import (
	"errors"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

type frontmatter struct {
	Title       string          `yaml:"title"`
	Date        frontmatterDate `yaml:"date"`
	Tags        tagList         `yaml:"tags"`
	Slug        string          `yaml:"slug"`
	Description string          `yaml:"description"`
	Image       string          `yaml:"image"`
	SortOrder   int             `yaml:"sort_order"`
}

// parseMarkdown splits a leading YAML frontmatter block from the body.
// Text without frontmatter is all body.
func parseMarkdown(source string) (frontmatter, string, error) {
	source = strings.TrimPrefix(source, "\ufeff")
	source = strings.ReplaceAll(source, "\r\n", "\n")

	if !strings.HasPrefix(source, frontmatterDelimiter+"\n") {
		return frontmatter{}, strings.TrimSpace(source), nil
	}

	rest := source[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	var header, body string
	switch {
	case strings.HasPrefix(rest, frontmatterDelimiter):
		header, body = "", rest[len(frontmatterDelimiter):]
	case end >= 0:
		header, body = rest[:end], rest[end+1+len(frontmatterDelimiter):]
	default:
		return frontmatter{}, "", errors.New("frontmatter is not closed")
	}

	var meta frontmatter
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return frontmatter{}, "", err
	}
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Slug = strings.TrimSpace(meta.Slug)

	return meta, strings.TrimSpace(body), nil
}

// tagList accepts a YAML sequence or a comma separated string.
type tagList []string

func (t *tagList) UnmarshalYAML(value *yaml.Node) error {
	var tags []string
	switch value.Kind {
	case yaml.SequenceNode:
		if err := value.Decode(&tags); err != nil {
			return err
		}
	case yaml.ScalarNode:
		tags = strings.Split(value.Value, ",")
	default:
		return errors.New("tags must be a list or a comma separated string")
	}

	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ReplaceAll(tag, "*", ""))
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	*t = cleaned
	return nil
}

type frontmatterDate struct {
	time.Time
}

// Layouts seen in imported sites, tried after RFC 3339.
var dateLayouts = []string{
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"06/01/02 15:04:05",
	"06/01/02 15:04",
	"2006/01/02",
	"2006-01-02",
}

// An unparseable date decodes to the zero time.
func (d *frontmatterDate) UnmarshalYAML(value *yaml.Node) error {
	d.Time = parseDate(value.Value)
	return nil
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}

	cleaned := strings.NewReplacer("UTC", "", "GMT", "", "T", " ").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
