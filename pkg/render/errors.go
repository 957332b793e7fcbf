package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-dorf/pkg/form"
	"github.com/goliatone/go-dorf/pkg/metadata"
)

// ErrorMapping splits a server error payload into field messages keyed by
// field key and form level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form level messages, trimming blanks and
// dropping duplicates while keeping order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors resolves payload paths (dotted keys, JSON pointers, bracketed
// indices, request wrappers such as "body.") against the keys of the form's
// fields. The longest matching key wins; paths matching nothing are kept as
// form level messages.
func MapErrors(f *form.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		return mapping
	}

	keys := make(map[string]struct{})
	if f != nil {
		metadata.Walk(f.Fields(), func(field metadata.Field) {
			keys[field.Key()] = struct{}{}
		})
	}

	for _, raw := range sortedPaths(payload) {
		messages := normalizeMessages(payload[raw])
		if len(messages) == 0 {
			continue
		}
		key, formLevel := mapErrorPath(raw, keys)
		if formLevel {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func sortedPaths(payload map[string][]string) []string {
	paths := make([]string, 0, len(payload))
	for path := range payload {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func normalizeMessages(messages []string) []string {
	out := lo.Uniq(lo.FilterMap(messages, func(message string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(message)
		return trimmed, trimmed != ""
	}))
	if len(out) == 0 {
		return nil
	}
	return out
}

// requestWrappers are leading path segments added by request envelopes.
var requestWrappers = map[string]bool{
	"body": true, "request": true, "payload": true, "data": true, "attributes": true,
}

var formLevelKeys = map[string]bool{
	"": true, ".": true, "/": true, "#": true, "$": true,
	"form": true, "__all__": true, "non_field_errors": true, "non-field-errors": true,
}

func mapErrorPath(raw string, keys map[string]struct{}) (string, bool) {
	if formLevelKeys[strings.ToLower(strings.TrimSpace(raw))] {
		return "", true
	}
	segments := splitPath(raw)
	if len(segments) == 0 {
		return "", true
	}

	unwrapped := segments
	for len(unwrapped) > 0 && requestWrappers[strings.ToLower(unwrapped[0])] {
		unwrapped = unwrapped[1:]
	}

	best := ""
	for _, candidate := range [][]string{segments, unwrapped, withoutIndices(segments), withoutIndices(unwrapped)} {
		match := longestPrefixKey(candidate, keys)
		if strings.Count(match, ".") > strings.Count(best, ".") || best == "" {
			best = match
		}
	}
	return best, best == ""
}

// splitPath accepts dotted paths, JSON pointers ("/a/0/b", "#/a") and
// bracketed indices ("a[0].b").
func splitPath(path string) []string {
	clean := strings.TrimLeft(strings.TrimSpace(path), "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, strings.NewReplacer("~1", "/", "~0", "~").Replace(part))
	}
	return out
}

func withoutIndices(segments []string) []string {
	return lo.Reject(segments, func(segment string, _ int) bool {
		_, err := strconv.Atoi(segment)
		return err == nil
	})
}

func longestPrefixKey(segments []string, keys map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := keys[candidate]; ok {
			return candidate
		}
	}
	return ""
}
