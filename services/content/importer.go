package content

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/sitesearch/logger"
)

type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

const (
	postsDir      = "posts"
	markdownExt   = ".md"
	maxSourceSize = 10 * 1024 * 1024
)

// Directories holding generated listings rather than content.
var excludedDirs = map[string]struct{}{
	"galleries": {},
	"books":     {},
	"listings":  {},
}

type SourceFile struct {
	Path    string
	Kind    Kind
	ModTime time.Time
}

// Importer turns a directory of markdown files into posts and pages.
type Importer struct {
	logger  logger.Logger
	service *Service
}

func NewImporter(logger logger.Logger, service *Service) *Importer {
	return &Importer{logger: logger, service: service}
}

// Discover lists the markdown files under rootPath. Files below a posts
// directory are posts, all others are pages.
func (i *Importer) Discover(rootPath string) ([]SourceFile, error) {
	var files []SourceFile

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			i.logger.Error("could not walk through file or directory", "path", path, "err", err.Error())
			if errors.Is(err, os.ErrPermission) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			if _, excluded := excludedDirs[info.Name()]; excluded || strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") || !strings.EqualFold(filepath.Ext(info.Name()), markdownExt) {
			return nil
		}

		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{
			Path:    path,
			Kind:    kindOf(rel),
			ModTime: info.ModTime(),
		})
		return nil
	})

	return files, err
}

func kindOf(rel string) Kind {
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	for _, dir := range dirs {
		if dir == postsDir {
			return KindPost
		}
	}
	return KindPage
}

// Import reads one source file and saves it as a post or page.
func (i *Importer) Import(file SourceFile) error {
	source, err := readSourceFile(file.Path)
	if err != nil {
		i.logger.Error("could not read source file", "path", file.Path, "err", err.Error())
		return err
	}

	meta, body, err := parseMarkdown(source)
	if err != nil {
		i.logger.Error("could not parse source file", "path", file.Path, "err", err.Error())
		return fmt.Errorf("%s: %w", file.Path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))
	title := meta.Title
	if title == "" {
		title = stem
	}
	slug := Slugify(meta.Slug)
	if slug == untitledSlug {
		slug = Slugify(datePrefix.ReplaceAllString(stem, ""))
	}
	if slug == untitledSlug {
		// stable across imports of the same file
		slug = untitledSlugFor(uuid.NewSHA1(uuid.NameSpaceURL, []byte(file.Path)).String())
	}

	switch file.Kind {
	case KindPost:
		published := meta.Date.Time
		if published.IsZero() {
			published = file.ModTime.UTC()
		}
		_, err = i.service.SavePost(Post{
			Title:         title,
			Content:       body,
			Published:     published,
			Tags:          meta.Tags,
			Slug:          slug,
			Excerpt:       meta.Description,
			FeaturedImage: meta.Image,
		})
	default:
		_, err = i.service.SavePage(Page{
			Title:     title,
			Content:   body,
			Slug:      slug,
			SortOrder: meta.SortOrder,
		})
	}
	if err != nil {
		return fmt.Errorf("%s: %w", file.Path, err)
	}
	return nil
}

// File names may start with the publication date: 2012-03-04-title.md
var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

func readSourceFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxSourceSize))
	if err != nil {
		return "", err
	}
	return string(content), nil
}
