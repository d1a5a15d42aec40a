package challenge

// Registry maps challenge codes to their evaluation rules. Adding a
// challenge means registering a rule, not growing a switch statement.
type Registry struct {
	rules map[string]Rule
	order []string
}

// NewRegistry returns a registry preloaded with the built-in catalogue.
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[string]Rule)}
	r.Register(decafSwapRule{})
	r.Register(halfReductionRule{})
	r.Register(rolling24hRule{})
	r.Register(threeDayAdherenceRule{})
	r.Register(firstAttendanceRule{})
	r.Register(attendanceRule{code: CodeTenDayAttendance, target: 10})
	return r
}

// Register adds or replaces the rule for its code. Registration order is
// preserved for listing; re-registering keeps the original position.
func (r *Registry) Register(rule Rule) {
	code := rule.Code()
	if _, exists := r.rules[code]; !exists {
		r.order = append(r.order, code)
	}
	r.rules[code] = rule
}

// Lookup returns the rule for code, or false when the code is unknown.
func (r *Registry) Lookup(code string) (Rule, bool) {
	rule, ok := r.rules[code]
	return rule, ok
}

// Codes returns the registered codes in registration order.
func (r *Registry) Codes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Evaluate runs the rule for code against s. Unknown codes report not
// started so listings never fail on catalogue drift.
func (r *Registry) Evaluate(code string, s Snapshot) Result {
	rule, ok := r.rules[code]
	if !ok {
		return Result{Status: StatusNotStarted, Progress: 0}
	}
	return rule.Evaluate(s)
}
