package validation

import (
	stderrors "errors"
	"testing"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

func pairSchema() Schema {
	return NewSchema(
		Field("code", Required("Pairing code is required")),
		Field("name", Required("Device name/topic is required")),
		Field("node_id", Required("Node ID is required"), Integer(), Min(1, "Node ID must be at least 1")),
	)
}

func TestCheck_AccumulatesAcrossFields(t *testing.T) {
	_, err := pairSchema().Check(map[string]string{"code": "", "name": "x", "node_id": "0"})

	var verr *errors.ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	want := []string{"Pairing code is required", "Node ID must be at least 1"}
	if len(verr.Messages) != len(want) {
		t.Fatalf("messages = %v, want %v", verr.Messages, want)
	}
	for i := range want {
		if verr.Messages[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, verr.Messages[i], want[i])
		}
	}
}

func TestCheck_CleanPayloadIsStripped(t *testing.T) {
	payload, err := pairSchema().Check(map[string]string{
		"code":       "MT:ABC",
		"name":       "motion/room",
		"node_id":    "3",
		"submitting": "true",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) != 3 {
		t.Errorf("payload = %v, want exactly the three declared fields", payload)
	}
	if payload["code"] != "MT:ABC" || payload["name"] != "motion/room" || payload["node_id"] != "3" {
		t.Errorf("payload = %v", payload)
	}
}

func TestValidate_EveryRuleRuns(t *testing.T) {
	f := Field("pin", MinLength(4), Integer(), Custom(func(v string) bool { return v[0] != 'x' }))
	res := f.Validate("xy")

	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Messages) != 3 {
		t.Fatalf("messages = %v, want three", res.Messages)
	}
	for _, name := range []string{"minLength", "integer", "custom"} {
		if res.Errors[name] == nil {
			t.Errorf("Errors[%q] = nil, want a message", name)
		}
	}
}

func TestValidate_PassingRulesRecordNil(t *testing.T) {
	res := Field("n", Required(), Integer(), Min(1)).Validate("5")
	if !res.Valid || len(res.Messages) != 0 {
		t.Fatalf("res = %+v, want valid", res)
	}
	for _, name := range []string{"required", "integer", "min"} {
		msg, ok := res.Errors[name]
		if !ok || msg != nil {
			t.Errorf("Errors[%q] = %v, %v; want present and nil", name, msg, ok)
		}
	}
}

func TestNumericRules(t *testing.T) {
	tests := []struct {
		value       string
		integer     bool
		minOne      bool
		description string
	}{
		{"", true, true, "empty is vacuously valid"},
		{"1", true, true, "minimum itself"},
		{" 42 ", true, true, "surrounding space"},
		{"0", true, false, "below minimum"},
		{"-3", true, false, "negative"},
		{"1.5", false, true, "fraction"},
		{"abc", false, false, "non-numeric"},
		{"12abc", false, false, "numeric prefix"},
		{"NaN", false, false, "NaN"},
		{"Inf", false, false, "infinity"},
		{"0x10", false, false, "hex is not base 10"},
		{"9223372036854775808", true, true, "above int64"},
		{"18446744073709551615", true, true, "max uint64"},
		{"-9223372036854775809", true, false, "below int64"},
	}
	integer, minOne := Integer(), Min(1)
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := integer.Valid(tt.value); got != tt.integer {
				t.Errorf("Integer(%q) = %v, want %v", tt.value, got, tt.integer)
			}
			if got := minOne.Valid(tt.value); got != tt.minOne {
				t.Errorf("Min(1)(%q) = %v, want %v", tt.value, got, tt.minOne)
			}
		})
	}
}

func TestRequired(t *testing.T) {
	r := Required()
	for _, v := range []string{"", " ", "\t\n"} {
		if r.Valid(v) {
			t.Errorf("Required(%q) should fail", v)
		}
	}
	if !r.Valid(" a ") {
		t.Error("Required should pass on non-blank values")
	}
	if r.Message != "This field is required" {
		t.Errorf("default message = %q", r.Message)
	}
}

func TestDefaultMessages(t *testing.T) {
	tests := []struct {
		rule Rule
		want string
	}{
		{Integer(), "Must be a valid number"},
		{Min(1), "Must be at least 1"},
		{Min(2.5), "Must be at least 2.5"},
		{MinLength(3), "Must be at least 3 characters"},
		{Custom(func(string) bool { return true }), "Invalid value"},
		{Min(1, "custom text"), "custom text"},
	}
	for _, tt := range tests {
		if tt.rule.Message != tt.want {
			t.Errorf("%s message = %q, want %q", tt.rule.Name, tt.rule.Message, tt.want)
		}
	}
}

func TestReport_FieldLookup(t *testing.T) {
	rep := pairSchema().Validate(map[string]string{"code": "c"})
	if rep.Valid {
		t.Fatal("missing name and node_id should fail")
	}
	res, ok := rep.Field("node_id")
	if !ok || res.Errors["required"] == nil {
		t.Errorf("node_id = %+v, want required failure", res)
	}
	if res.Errors["min"] != nil {
		t.Error("min should pass vacuously on empty")
	}
	if got := pairSchema().Fields(); len(got) != 3 || got[2] != "node_id" {
		t.Errorf("Fields() = %v", got)
	}
}
