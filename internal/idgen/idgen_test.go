package idgen

import (
	"regexp"
	"strings"
	"testing"
)

func TestFormID(t *testing.T) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(Prefix) + `[a-z0-9]+$`)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := FormID()
		if err != nil {
			t.Fatalf("FormID() error on iteration %d: %v", i, err)
		}
		if len(id) != len(Prefix)+Length || !pattern.MatchString(id) {
			t.Fatalf("FormID() = %q, unexpected shape", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestFieldID(t *testing.T) {
	cases := map[string]struct {
		form, key, want string
	}{
		"nested key":  {form: "dorf-abc", key: "address.street", want: "dorf-abc-address-street"},
		"no form id":  {form: "", key: "name", want: "name"},
		"indexed key": {form: "f", key: "tags[0]", want: "f-tags-0"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := FieldID(tc.form, tc.key)
			if got != tc.want || strings.Contains(got, ".") {
				t.Fatalf("FieldID(%q, %q) = %q, want %q", tc.form, tc.key, got, tc.want)
			}
		})
	}
}
