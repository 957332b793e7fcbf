package expr

import (
	"errors"
	"testing"

	"github.com/goliatone/go-dorf/pkg/visibility"
)

func TestEvaluator_Rules(t *testing.T) {
	t.Parallel()

	ctx := visibility.Context{
		Values: map[string]any{
			"enabled":  true,
			"archived": "false",
			"role":     "admin",
			"seats":    12.0,
			"count":    3,
			"empty":    "",
			"address":  map[string]any{"country": "uk"},
			"cta.text": "Go",
		},
		Extras: map[string]any{"beta": true, "plan": map[string]any{"tier": "pro"}},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{"", true},
		{"enabled", true},
		{"!enabled", false},
		{"archived == false", true},
		{"enabled == 'true'", true},
		{`role == "admin"`, true},
		{"role != 'admin'", false},
		{"seats >= 10 && seats < 50", true},
		{"count == 3", true},
		{"count > '2'", true},
		{"empty || missing", false},
		{"missing == null", true},
		{"role == null", false},
		{"address.country == 'uk'", true},
		{"cta.text == 'Go'", true},
		{"extras.beta && extras.plan.tier == 'pro'", true},
		{"!(enabled && role == 'editor')", true},
		{"role > 3", false},
		{"-1 < count", true},
	}
	eval := New()
	for _, tc := range cases {
		got, err := eval.Eval("field", tc.rule, ctx)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.rule, tc.want, got)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{"role = 'admin'", "(enabled", "'open", "enabled enabled", "&& enabled", "role == #"} {
		if _, err := Parse(rule); !errors.Is(err, ErrSyntax) {
			t.Fatalf("%q: expected ErrSyntax, got %v", rule, err)
		}
	}
}
