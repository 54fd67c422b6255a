package shortcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefinitions(t *testing.T) {
	require := require.New(t)

	registry, err := Load()
	require.NoError(err)

	names := make([]string, 0)
	for _, definition := range registry.Definitions() {
		names = append(names, definition.Name)
	}
	require.Equal([]string{"youtube", "thumbnail", "figure", "gallery", "raw", "shell", "tag", "card", "admonition", "hero"}, names)

	admonition, ok := registry.Lookup("admonition")
	require.True(ok)
	require.Equal(KindBlock, admonition.Kind)
	typeField, ok := admonition.field("type")
	require.True(ok)
	require.True(typeField.Required)
	require.Equal([]string{"note", "warning", "tip", "danger", "info", "success"}, typeField.Options)

	hero, ok := registry.Lookup("hero")
	require.True(ok)
	tagField, ok := hero.field("tag")
	require.True(ok)
	require.Equal("section", tagField.Default)

	_, ok = registry.Lookup("missing")
	require.False(ok)
}

func TestParseRejectsBadDefinitions(t *testing.T) {
	type testCase struct {
		name string
		yaml string
	}

	testCases := []testCase{
		{name: "malformed yaml", yaml: "shortcodes: ["},
		{name: "missing name", yaml: "shortcodes:\n  - kind: inline\n"},
		{name: "unknown kind", yaml: "shortcodes:\n  - name: x\n    kind: sideways\n"},
		{name: "duplicate", yaml: "shortcodes:\n  - name: x\n    kind: inline\n  - name: x\n    kind: block\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	registry, err := Load()
	require.NoError(t, err)

	type testCase struct {
		name      string
		text      string
		wantError bool
	}

	testCases := []testCase{
		{name: "plain text", text: "No shortcodes here."},
		{name: "positional inline", text: `Watch {{< youtube dQw4w9WgXcQ >}} now`},
		{name: "named inline", text: `{{< youtube id="dQw4w9WgXcQ" width="640" >}}`},
		{name: "figure with all required", text: `{{< figure src="/a.png" link="/a" caption="An image" >}}`},
		{name: "block with content", text: "{{% raw %}}<b>hi</b>{{% /raw %}}"},
		{name: "admonition allowed type", text: `{{% admonition type="tip" title="Hint" %}}Use it.{{% /admonition %}}`},
		{name: "nested blocks", text: `{{% card class="x" %}}{{% admonition note %}}inner{{% /admonition %}}{{% /card %}}`},
		{name: "block without required children", text: `{{% card %}}{{% /card %}}`},
		{name: "unknown shortcode", text: `{{< vimeo 123 >}}`, wantError: true},
		{name: "missing required field", text: `{{< youtube width="640" >}}`, wantError: true},
		{name: "empty required field", text: `{{< gallery name="" >}}`, wantError: true},
		{name: "figure missing caption", text: `{{< figure /a.png /a >}}`, wantError: true},
		{name: "option outside allowed set", text: `{{% admonition type="fatal" %}}x{{% /admonition %}}`, wantError: true},
		{name: "unknown named field", text: `{{< youtube id="x" autoplay="1" >}}`, wantError: true},
		{name: "too many positional arguments", text: `{{< gallery a b c >}}`, wantError: true},
		{name: "mixed arguments", text: `{{< youtube abc width="1" >}}`, wantError: true},
		{name: "unterminated quote", text: `{{< youtube id="abc >}}`, wantError: true},
		{name: "unclosed block", text: `{{% shell "ls -la" %}}output`, wantError: true},
		{name: "stray closing tag", text: `text {{% /card %}}`, wantError: true},
		{name: "crossed blocks", text: `{{% card %}}{{% hero %}}x{{% /card %}}{{% /hero %}}`, wantError: true},
		{name: "raw requires content", text: `{{% raw %}}  {{% /raw %}}`, wantError: true},
		{name: "children passed as argument", text: `{{% raw children="x" %}}y{{% /raw %}}`, wantError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := registry.Validate(tc.text)
			if tc.wantError {
				require.ErrorIs(t, err, ErrInvalidShortcode)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStrip(t *testing.T) {
	registry, err := Load()
	require.NoError(t, err)

	type testCase struct {
		name string
		text string
		want string
	}

	testCases := []testCase{
		{name: "no markup", text: "Hello   world\n", want: "Hello world"},
		{name: "inline removed", text: `Intro {{< youtube id="abc" >}} outro`, want: "Intro outro"},
		{name: "block content kept", text: "{{% admonition note %}}Remember this{{% /admonition %}}", want: "Remember this"},
		{name: "words do not merge", text: "one{{< gallery trip >}}two", want: "one two"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, registry.Strip(tc.text))
		})
	}
}
