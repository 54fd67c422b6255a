package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Title string `json:"title" validate:"required"`
	Slug  string `json:"slug" validate:"valid_slug"`
	Theme string `json:"theme" validate:"omitempty,valid_theme"`
	Root  string `json:"root" validate:"omitempty,valid_path"`
}

func TestValidate(t *testing.T) {
	validator, err := New(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	require.NoError(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	type testCase struct {
		name    string
		record  testRecord
		wantErr string
	}

	testCases := []testCase{
		{name: "valid", record: testRecord{Title: "Hello", Slug: "hello-world", Theme: "light", Root: dir}},
		{name: "empty slug is allowed", record: testRecord{Title: "Hello"}},
		{name: "missing title", record: testRecord{Slug: "x"}, wantErr: "missing required field 'title'"},
		{name: "uppercase slug", record: testRecord{Title: "x", Slug: "Hello"}, wantErr: "invalid slug"},
		{name: "slug with trailing hyphen", record: testRecord{Title: "x", Slug: "hello-"}, wantErr: "invalid slug"},
		{name: "slug with space", record: testRecord{Title: "x", Slug: "a b"}, wantErr: "invalid slug"},
		{name: "unknown theme", record: testRecord{Title: "x", Theme: "sepia"}, wantErr: "invalid theme"},
		{name: "relative path", record: testRecord{Title: "x", Root: "content"}, wantErr: "invalid path"},
		{name: "missing path", record: testRecord{Title: "x", Root: filepath.Join(dir, "nope")}, wantErr: "invalid path"},
		{name: "file instead of directory", record: testRecord{Title: "x", Root: file}, wantErr: "invalid path"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(tc.record)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.wantErr)
		})
	}
}
