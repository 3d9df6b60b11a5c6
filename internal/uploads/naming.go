package uploads

import (
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// TimestampLayout is the human-readable prefix of every stored upload name.
const TimestampLayout = "20060102150405"

// MaxNameLength caps the sanitized part of a stored name, leaving room for the
// timestamp prefix under the 255 byte filesystem limit.
const MaxNameLength = 100

// extensions longer than this are not worth preserving when truncating
const maxExtLength = 16

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client-supplied filename to a safe ASCII name:
// accents are folded, path separators and whitespace become underscores,
// anything outside [A-Za-z0-9_.-] is dropped and leading/trailing dots and
// underscores are trimmed. Names longer than MaxNameLength are cut, keeping
// the extension. An empty result becomes "upload".
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	name = truncateName(name)

	if name == "" {
		return "upload"
	}
	return name
}

// truncateName shortens an ASCII name to MaxNameLength bytes.
func truncateName(name string) string {
	if len(name) <= MaxNameLength {
		return name
	}
	ext := path.Ext(name)
	if len(ext) > maxExtLength || len(ext) == len(name) {
		ext = ""
	}
	base := strings.TrimRight(name[:MaxNameLength-len(ext)], "._")
	if base == "" {
		return strings.TrimLeft(ext, ".")
	}
	return base + ext
}

// UniqueName builds the storage name for an upload received at now:
// "<YYYYMMDDHHMMSS>_<8 hex>_<sanitized original>".
func UniqueName(now time.Time, original string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.Format(TimestampLayout) + "_" + suffix + "_" + SanitizeFilename(original)
}

// validName rejects anything that is not a single path element.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return path.Base(name) == name
}
