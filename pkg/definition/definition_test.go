package definition_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dorf/pkg/css"
	"github.com/goliatone/go-dorf/pkg/definition"
	"github.com/goliatone/go-dorf/pkg/future"
	"github.com/goliatone/go-dorf/pkg/validator"
)

func TestNewBase_Defaults(t *testing.T) {
	defs := []definition.Definition{
		definition.NewInput(definition.InputOptions{}),
		definition.NewCheckbox(definition.Options{}),
		definition.NewSelect(definition.SelectOptions{}),
		definition.NewRadio(definition.ChooseOptions{}),
		definition.NewNested(definition.NestedOptions{}),
	}

	alwaysValid := reflect.ValueOf(validator.AlwaysValid).Pointer()
	for _, def := range defs {
		t.Run(def.Tag().String(), func(t *testing.T) {
			common := def.Common()
			validators := common.Validators()
			if len(validators) != 1 || reflect.ValueOf(validators[0]).Pointer() != alwaysValid {
				t.Fatalf("expected AlwaysValid default validator, got %d validators", len(validators))
			}
			if common.CSS() != (css.Classes{}) {
				t.Fatalf("expected empty css, got %+v", common.CSS())
			}
			if common.OnSummary() {
				t.Fatalf("expected OnSummary false")
			}
			if _, ok := common.Order(); ok {
				t.Fatalf("expected unset order")
			}
			if common.Debounce() != 0 || common.UpdateModelOnChange() {
				t.Fatalf("unexpected change handling defaults")
			}
		})
	}
}

func TestNewBase_Options(t *testing.T) {
	def := definition.NewInput(definition.InputOptions{
		Options: definition.Options{
			Label:               "Email",
			Validators:          []validator.Func{nil, validator.Required()},
			ErrorMessage:        "email is required",
			Extras:              map[string]any{"hint": "work address", "rows": 3},
			Debounce:            -time.Second,
			UpdateModelOnChange: true,
			Order:               definition.Ordered(4),
		},
		Type: "email",
	})

	if def.Label() != "Email" || def.Type() != "email" || def.ErrorMessage() != "email is required" {
		t.Fatalf("unexpected attributes: %q %q %q", def.Label(), def.Type(), def.ErrorMessage())
	}
	if len(def.Validators()) != 1 {
		t.Fatalf("nil validators should be dropped, got %d", len(def.Validators()))
	}
	if errs := def.Validator()(""); !errs.Has(validator.KindRequired) {
		t.Fatalf("expected required error, got %v", errs)
	}
	if def.Debounce() != 0 {
		t.Fatalf("negative debounce should clamp to 0, got %v", def.Debounce())
	}
	if order, ok := def.Order(); !ok || order != 4 {
		t.Fatalf("expected order 4, got %d (%v)", order, ok)
	}
	if diff := cmp.Diff([]string{"hint", "rows"}, def.ExtraKeys()); diff != "" {
		t.Fatalf("extra keys mismatch (-want +got):\n%s", diff)
	}
	if rows, ok := definition.Extra[int](def, "rows"); !ok || rows != 3 {
		t.Fatalf("expected typed extra 3, got %v (%v)", rows, ok)
	}
	if _, ok := definition.Extra[int](def, "hint"); ok {
		t.Fatalf("mismatched extra type should not convert")
	}

	extras := def.Extras()
	extras["hint"] = "changed"
	if hint, _ := definition.Extra[string](def, "hint"); hint != "work address" {
		t.Fatalf("extras copy leaked into definition")
	}

	def.SetOrder(1)
	if order, _ := def.Order(); order != 1 {
		t.Fatalf("expected order 1 after SetOrder, got %d", order)
	}
}

func TestNested_Defaults(t *testing.T) {
	def := definition.NewNested(definition.NestedOptions{Columns: 0})
	if def.Columns() != definition.DefaultColumns {
		t.Fatalf("expected default columns %d, got %d", definition.DefaultColumns, def.Columns())
	}
	if def.TransparentFlow() {
		t.Fatalf("transparent flow should default to false")
	}
}

func TestChoose_NoSource(t *testing.T) {
	def := definition.NewSelect(definition.SelectOptions{})
	if _, err := def.OptionsToSelect(); !errors.Is(err, definition.ErrNoOptionSource) {
		t.Fatalf("expected ErrNoOptionSource, got %v", err)
	}
	if _, err := def.WaitOptions(context.Background()); !errors.Is(err, definition.ErrNoOptionSource) {
		t.Fatalf("expected ErrNoOptionSource from WaitOptions, got %v", err)
	}
}

func TestChoose_StaticWins(t *testing.T) {
	static := []definition.Option{{Key: 1, Value: "one"}}
	def := definition.NewRadio(definition.ChooseOptions{
		OptionsToSelect:      static,
		AsyncOptionsToSelect: future.Resolved([]definition.Option{{Key: 2, Value: "two"}}),
	})
	got, err := def.OptionsToSelect()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if diff := cmp.Diff(static, got); diff != "" {
		t.Fatalf("static options mismatch (-want +got):\n%s", diff)
	}
	if def.HasAsyncOptions() || def.AsyncOptions() != nil {
		t.Fatalf("static options should shadow the async source")
	}
}

func TestChoose_AsyncResolvesAndCaches(t *testing.T) {
	source := future.New[[]definition.Option]()
	def := definition.NewSelect(definition.SelectOptions{
		ChooseOptions: definition.ChooseOptions{AsyncOptionsToSelect: source},
	})

	got, err := def.OptionsToSelect()
	if err != nil || len(got) != 0 {
		t.Fatalf("pending source should yield empty list, got %v, %v", got, err)
	}

	want := []definition.Option{{Key: "a", Value: "Alpha"}, {Key: "b", Value: "Beta"}}
	source.Resolve(want)

	for i := 0; i < 3; i++ {
		got, err := def.OptionsToSelect()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("read %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	got[0].Value = "mutated"
	again, _ := def.OptionsToSelect()
	if again[0].Value != "Alpha" {
		t.Fatalf("returned slice should be a copy")
	}
}

func TestChoose_WaitOptions(t *testing.T) {
	want := []definition.Option{{Key: true, Value: "Yes"}}
	def := definition.NewRadio(definition.ChooseOptions{
		AsyncOptionsToSelect: future.Go(context.Background(), func(context.Context) ([]definition.Option, error) {
			time.Sleep(5 * time.Millisecond)
			return want, nil
		}),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := def.WaitOptions(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wait mismatch (-want +got):\n%s", diff)
	}
}

func TestChoose_AsyncFailure(t *testing.T) {
	boom := errors.New("backend down")
	def := definition.NewSelect(definition.SelectOptions{
		ChooseOptions: definition.ChooseOptions{AsyncOptionsToSelect: future.Failed[[]definition.Option](boom)},
	})

	got, err := def.OptionsToSelect()
	if err != nil || len(got) != 0 {
		t.Fatalf("failed source should yield empty list without error, got %v, %v", got, err)
	}
	if !errors.Is(def.OptionsErr(), boom) {
		t.Fatalf("expected OptionsErr to expose failure, got %v", def.OptionsErr())
	}
	if _, err := def.WaitOptions(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("WaitOptions should report failure, got %v", err)
	}
}

type account struct{}

func (*account) FieldDefinitions() definition.Map {
	return definition.Map{"name": definition.NewInput(definition.InputOptions{})}
}

func TestIsDomainObject(t *testing.T) {
	var nilAccount *account
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "pointer", value: &account{}, want: true},
		{name: "typed nil", value: nilAccount, want: false},
		{name: "nil", value: nil, want: false},
		{name: "plain struct", value: struct{}{}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := definition.IsDomainObject(tc.value); got != tc.want {
				t.Fatalf("IsDomainObject = %v, want %v", got, tc.want)
			}
		})
	}

	keys := (&account{}).FieldDefinitions().Keys()
	if diff := cmp.Diff([]string{"name"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}
