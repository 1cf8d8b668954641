package gmail_tools

// Validate checks args against op's parameters and returns the typed
// arguments. Every parameter must be present, a string and non-empty.
// Arguments the operation does not declare are ignored.
func Validate(op Operation, args map[string]any) (map[string]string, error) {
	typed := make(map[string]string, len(op.Params))
	var violations []Violation

	for _, p := range op.Params {
		raw, ok := args[p.Name]
		if !ok {
			violations = append(violations, Violation{Field: p.Name, Constraint: ConstraintRequired})
			continue
		}
		s, ok := raw.(string)
		if !ok {
			violations = append(violations, Violation{Field: p.Name, Constraint: ConstraintString})
			continue
		}
		if s == "" {
			violations = append(violations, Violation{Field: p.Name, Constraint: ConstraintNonEmpty})
			continue
		}
		typed[p.Name] = s
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Operation: op.Name, Violations: violations}
	}
	return typed, nil
}
