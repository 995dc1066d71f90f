package store

import (
	"strings"

	"github.com/matheus3301/msgarchive/internal/typedstream"
)

// resolveText returns the readable text of a message row, caching decoded
// blobs by row id.
func (db *DB) resolveText(id int64, plain string, blob []byte) string {
	if strings.TrimSpace(plain) != "" || len(blob) == 0 {
		return typedstream.ResolveText(plain, blob)
	}
	if db.texts != nil {
		if text, ok := db.texts.Get(id); ok {
			return text
		}
	}
	text := typedstream.DecodeBlob(blob)
	if db.texts != nil {
		db.texts.Add(id, text)
	}
	return text
}

// containsFold reports whether sub occurs in s, folding ASCII letters only.
// This matches the default LIKE comparison of the archive store.
func containsFold(s, sub string) bool {
	return strings.Contains(foldASCII(s), foldASCII(sub))
}

func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// likePattern builds a substring LIKE pattern with wildcards escaped.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
