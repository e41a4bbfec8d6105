// Package validation is a declarative per-field rule engine. A schema maps
// field names to ordered rule lists; validation is a pure function of its
// inputs and reports every failing rule, not just the first.
package validation

// Subject is the object under validation, keyed by field name.
type Subject map[string]any

// Rule evaluates one constraint against a field value. The whole subject is
// available for cross-field rules. An empty string means the rule passed.
//
// Rules that express a constraint on present values (length, pattern, range)
// must pass on empty input and leave presence checking to Required, so a
// missing optional field never produces contradictory messages.
type Rule func(value any, subject Subject) string

// Field pairs a field name with its ordered rules.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered list of fields to validate. Slice order stands in for
// the declaration order of the fields.
type Schema []Field

// Result holds the outcome of a Validate call. Only failing fields appear in
// Errors; their messages keep rule order.
type Result struct {
	Errors map[string][]string
}

// Valid reports whether no field produced any message.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// FieldErrors returns the messages for one field, nil when it passed.
func (r *Result) FieldErrors(name string) []string {
	return r.Errors[name]
}

// Validate runs every rule of every schema field against the subject. All
// rules for a field are evaluated; their messages are collected in order.
func Validate(subject Subject, schema Schema) *Result {
	result := &Result{Errors: make(map[string][]string)}

	for _, field := range schema {
		value := subject[field.Name]
		var messages []string
		for _, rule := range field.Rules {
			if msg := rule(value, subject); msg != "" {
				messages = append(messages, msg)
			}
		}
		if len(messages) > 0 {
			result.Errors[field.Name] = messages
		}
	}

	return result
}
