package serializer

import (
	"mime"
	"strings"
)

// BaseMediaType returns the lower-cased "type/subtype" of a Content-Type
// value, without parameters.
func BaseMediaType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		mt, _, _ = strings.Cut(v, ";")
		mt = strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// MatchMediaType reports whether mimeType matches pattern. Parameters are
// ignored; pattern may be "*/*" or "type/*".
func MatchMediaType(pattern, mimeType string) bool {
	p, m := BaseMediaType(pattern), BaseMediaType(mimeType)
	if m == "" || p == "" {
		return false
	}
	if p == "*/*" || p == m {
		return true
	}
	ptype, psub, _ := strings.Cut(p, "/")
	mtype, _, _ := strings.Cut(m, "/")
	return psub == "*" && ptype == mtype
}
