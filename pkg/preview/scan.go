package preview

import "strings"

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// scan walks template once, replacing every {{inner}} span with resolve(inner).
// When several openings precede a closing delimiter the innermost one starts
// the span. An enclosing span that is later closed is dropped along with the
// replacement it contains, so no delimiter pair survives around substituted
// text. Empty spans and unclosed openings are copied literally.
// Replacement text is never re-scanned.
func scan(template string, resolve func(inner string) string) string {
	out := make([]byte, 0, len(template))

	// depth counts enclosing openings still waiting for a close. mark is the
	// output offset of the outermost one.
	depth, mark := 0, 0
	pos := 0
	for pos < len(template) {
		start := strings.Index(template[pos:], openDelim)
		if start >= 0 {
			start += pos
		}

		if depth > 0 {
			c := strings.Index(template[pos:], closeDelim)
			if c >= 0 && (start < 0 || pos+c < start) {
				c += pos + len(closeDelim)
				out = append(out, template[pos:c]...)
				pos = c
				depth--
				if depth == 0 {
					out = out[:mark]
				}
				continue
			}
		}
		if start < 0 {
			break
		}

		end := strings.Index(template[start+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		end += start + len(openDelim)

		open := start + strings.LastIndex(template[start:end], openDelim)
		inner := template[open+len(openDelim) : end]

		if enclosing := strings.Count(template[start:open], openDelim); enclosing > 0 {
			if depth == 0 {
				mark = len(out) + start - pos
			}
			depth += enclosing
		}

		out = append(out, template[pos:open]...)
		if inner == "" {
			out = append(out, openDelim+closeDelim...)
		} else {
			out = append(out, resolve(inner)...)
		}
		pos = end + len(closeDelim)
	}
	out = append(out, template[pos:]...)
	return string(out)
}

// Placeholders lists the distinct placeholder keys in template in order of
// first appearance, after entity decoding.
func Placeholders(template string) []string {
	var keys []string
	seen := make(map[string]struct{})
	scan(entityDecoder.Replace(template), func(inner string) string {
		key := strings.TrimSpace(inner)
		if _, ok := seen[key]; !ok && key != "" {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		return ""
	})
	return keys
}
