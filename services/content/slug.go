package content

import (
	"strings"
	"unicode"
)

const untitledSlug = "untitled"

// Slugify lowercases title and joins its ASCII letters and digits with single
// hyphens. Whitespace, slashes, hyphens and underscores separate words.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			pendingHyphen = true
		}
	}

	if b.Len() == 0 {
		return untitledSlug
	}
	return b.String()
}

// untitledSlugFor makes an untitled slug unique to id, so records without a
// usable title never share one.
func untitledSlugFor(id string) string {
	return untitledSlug + "-" + strings.SplitN(id, "-", 2)[0]
}
