// Package validation checks form values against ordered per-field rules.
//
// Every rule of every field always runs, so a field can carry several
// messages at once. A Schema reduces the rule outcomes into a Report;
// Check is the terminal step that turns a failed report into an
// *errors.ValidationError and a clean one into the payload:
//
//	schema := validation.NewSchema(
//	    validation.Field("code", validation.Required("Pairing code is required")),
//	    validation.Field("node_id", validation.Required(), validation.Integer(), validation.Min(1)),
//	)
//	payload, err := schema.Check(values)
package validation

import (
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

// Rule is one named check on a field value. Valid reports whether value
// passes.
type Rule struct {
	Name    string
	Message string
	Valid   func(value string) bool
}

// Apply returns the rule's partial error map: its name mapped to nil when
// value passes, or to its message when it fails.
func (r Rule) Apply(value string) map[string]*string {
	if r.Valid(value) {
		return map[string]*string{r.Name: nil}
	}
	msg := r.Message
	return map[string]*string{r.Name: &msg}
}

func message(def string, override []string) string {
	if len(override) > 0 && override[0] != "" {
		return override[0]
	}
	return def
}

// Required fails on values that are empty after trimming whitespace.
func Required(msg ...string) Rule {
	return Rule{
		Name:    "required",
		Message: message("This field is required", msg),
		Valid:   func(v string) bool { return strings.TrimSpace(v) != "" },
	}
}

// Integer fails on non-blank values that are not base-10 integers. Blank
// values pass; pair with Required to enforce presence. Magnitude is not
// checked, so integers beyond the int64 range pass.
func Integer(msg ...string) Rule {
	return Rule{
		Name:    "integer",
		Message: message("Must be a valid number", msg),
		Valid: func(v string) bool {
			if strings.TrimSpace(v) == "" {
				return true
			}
			_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			var ne *strconv.NumError
			return err == nil || (stderrors.As(err, &ne) && ne.Err == strconv.ErrRange)
		},
	}
}

// Min fails on non-blank values below min and on non-blank values that are
// not numbers. Blank values pass.
func Min(min float64, msg ...string) Rule {
	return Rule{
		Name:    "min",
		Message: message("Must be at least "+strconv.FormatFloat(min, 'f', -1, 64), msg),
		Valid: func(v string) bool {
			if strings.TrimSpace(v) == "" {
				return true
			}
			n, ok := parseNumber(v)
			return ok && n >= min
		},
	}
}

// MinLength fails on non-empty values shorter than n runes.
func MinLength(n int, msg ...string) Rule {
	return Rule{
		Name:    "minLength",
		Message: message("Must be at least "+strconv.Itoa(n)+" characters", msg),
		Valid: func(v string) bool {
			return v == "" || len([]rune(v)) >= n
		},
	}
}

// Custom fails on non-empty values for which pred returns false.
func Custom(pred func(string) bool, msg ...string) Rule {
	return Rule{
		Name:    "custom",
		Message: message("Invalid value", msg),
		Valid: func(v string) bool {
			return v == "" || pred(v)
		},
	}
}

// parseNumber accepts plain base-10 decimals with an optional exponent.
func parseNumber(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.Trim(v, "0123456789+-.eE") != "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// FieldRules binds an ordered rule list to a field name.
type FieldRules struct {
	Name  string
	Rules []Rule
}

// Field declares the rules for one field, in the order they run.
func Field(name string, rules ...Rule) FieldRules {
	return FieldRules{Name: name, Rules: rules}
}

// Result is the outcome for one field. Errors maps every rule name to nil
// when the rule passed or to its message; Messages lists the failures in
// rule order.
type Result struct {
	Field    string
	Value    string
	Valid    bool
	Errors   map[string]*string
	Messages []string
}

// Validate runs every rule against value and accumulates the outcomes.
func (f FieldRules) Validate(value string) Result {
	res := Result{Field: f.Name, Value: value, Valid: true, Errors: make(map[string]*string)}
	for _, r := range f.Rules {
		for name, msg := range r.Apply(value) {
			if msg == nil {
				if _, seen := res.Errors[name]; !seen {
					res.Errors[name] = nil
				}
				continue
			}
			res.Errors[name] = msg
			res.Messages = append(res.Messages, *msg)
			res.Valid = false
		}
	}
	return res
}

// Report is the accumulated outcome of a Schema.
type Report struct {
	Valid  bool
	Fields []Result
}

// Errors returns every failure message, field by field in schema order.
func (r Report) Errors() []string {
	var out []string
	for _, f := range r.Fields {
		out = append(out, f.Messages...)
	}
	return out
}

// Field returns the result for name.
func (r Report) Field(name string) (Result, bool) {
	for _, f := range r.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return Result{}, false
}

// Schema is an ordered set of field rules.
type Schema struct {
	fields []FieldRules
}

// NewSchema builds a schema; fields are validated in the given order.
func NewSchema(fields ...FieldRules) Schema {
	return Schema{fields: fields}
}

// Fields returns the declared field names in order.
func (s Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Validate runs every rule of every field against values. Missing values
// validate as empty strings.
func (s Schema) Validate(values map[string]string) Report {
	rep := Report{Valid: true, Fields: make([]Result, 0, len(s.fields))}
	for _, f := range s.fields {
		res := f.Validate(values[f.Name])
		rep.Valid = rep.Valid && res.Valid
		rep.Fields = append(rep.Fields, res)
	}
	return rep
}

// Check validates values and returns either the payload stripped to the
// declared fields or an *errors.ValidationError with the ordered messages.
func (s Schema) Check(values map[string]string) (map[string]string, error) {
	rep := s.Validate(values)
	if !rep.Valid {
		return nil, &errors.ValidationError{Messages: rep.Errors()}
	}
	payload := make(map[string]string, len(s.fields))
	for _, f := range rep.Fields {
		payload[f.Field] = f.Value
	}
	return payload, nil
}
