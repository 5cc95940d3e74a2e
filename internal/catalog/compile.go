package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/weftlabs/weft/internal/ir"
)

// CompileError is a catalog compilation failure with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return firstErr
}

// CompileCatalog parses a CUE value holding the full catalog document:
// a "patterns" struct keyed by pattern id, plus an ordered "rules" list.
func CompileCatalog(v cue.Value) ([]ir.VerbSpec, ir.RuleSet, error) {
	if err := v.Err(); err != nil {
		return nil, nil, formatCUEError(err)
	}

	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	if !patternsVal.Exists() {
		return nil, nil, &CompileError{
			Field:   "patterns",
			Message: "patterns struct is required",
			Pos:     v.Pos(),
		}
	}

	var specs []ir.VerbSpec
	iter, err := patternsVal.Fields()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}
	for iter.Next() {
		spec, err := CompileSpec(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, nil, err
		}
		specs = append(specs, spec)
	}

	var rules ir.RuleSet
	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if rulesVal.Exists() {
		rules, err = compileRules(rulesVal)
		if err != nil {
			return nil, nil, err
		}
	}

	return specs, rules, nil
}

// CompileSpec parses one catalog entry into a VerbSpec.
func CompileSpec(patternID string, v cue.Value) (ir.VerbSpec, error) {
	spec := ir.VerbSpec{PatternID: patternID}

	var err error
	if spec.Name, err = requiredString(v, "name"); err != nil {
		return spec, err
	}
	if spec.NodeType, err = requiredString(v, "node"); err != nil {
		return spec, err
	}
	if spec.SplitType, err = requiredString(v, "split"); err != nil {
		return spec, err
	}
	if spec.JoinType, err = requiredString(v, "join"); err != nil {
		return spec, err
	}

	verbStr, err := requiredString(v, "verb")
	if err != nil {
		return spec, err
	}
	spec.Verb, err = ir.ParseVerb(verbStr)
	if err != nil {
		return spec, &CompileError{
			Field:   fmt.Sprintf("patterns.%s.verb", patternID),
			Message: err.Error(),
			Pos:     v.LookupPath(cue.ParsePath("verb")).Pos(),
		}
	}

	if spec.Params, err = compileParams(v.LookupPath(cue.ParsePath("params"))); err != nil {
		return spec, err
	}

	if spec.Exec, err = compileTemplate(v.LookupPath(cue.ParsePath("exec")), patternID+".exec"); err != nil {
		return spec, err
	}
	if spec.Removal, err = compileTemplate(v.LookupPath(cue.ParsePath("removal")), patternID+".removal"); err != nil {
		return spec, err
	}
	return spec, nil
}

func compileParams(v cue.Value) (ir.Params, error) {
	var p ir.Params
	if !v.Exists() {
		return p, nil
	}
	var err error
	if p.Cardinality, err = optionalString(v, "cardinality"); err != nil {
		return p, err
	}
	if p.SelectionMode, err = optionalString(v, "selectionMode"); err != nil {
		return p, err
	}
	if p.CompletionStrategy, err = optionalString(v, "completionStrategy"); err != nil {
		return p, err
	}
	if p.Threshold, err = optionalString(v, "threshold"); err != nil {
		return p, err
	}
	if p.CancellationScope, err = optionalString(v, "cancellationScope"); err != nil {
		return p, err
	}
	countVal := v.LookupPath(cue.ParsePath("count"))
	if countVal.Exists() {
		if p.Count, err = countVal.Int64(); err != nil {
			return p, &CompileError{
				Field:   "params.count",
				Message: "count must be an integer",
				Pos:     countVal.Pos(),
			}
		}
	}
	resetVal := v.LookupPath(cue.ParsePath("resetOnFire"))
	if resetVal.Exists() {
		if p.ResetOnFire, err = resetVal.Bool(); err != nil {
			return p, &CompileError{
				Field:   "params.resetOnFire",
				Message: "resetOnFire must be a bool",
				Pos:     resetVal.Pos(),
			}
		}
	}
	return p, nil
}

func compileTemplate(v cue.Value, field string) (ir.Template, error) {
	var tpl ir.Template
	if !v.Exists() {
		return tpl, nil
	}
	stepsVal := v.LookupPath(cue.ParsePath("steps"))
	if !stepsVal.Exists() {
		return tpl, &CompileError{
			Field:   field,
			Message: "template requires a steps list",
			Pos:     v.Pos(),
		}
	}
	iter, err := stepsVal.List()
	if err != nil {
		return tpl, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		step, err := compileStep(iter.Value(), fmt.Sprintf("%s.steps[%d]", field, i))
		if err != nil {
			return tpl, err
		}
		tpl.Steps = append(tpl.Steps, step)
	}
	return tpl, nil
}

func compileStep(v cue.Value, field string) (ir.RewriteStep, error) {
	var step ir.RewriteStep
	var err error

	if step.Comment, err = optionalString(v, "comment"); err != nil {
		return step, err
	}
	if step.Candidate, err = optionalString(v, "candidate"); err != nil {
		return step, err
	}
	if step.Where, err = compilePatternList(v.LookupPath(cue.ParsePath("where")), field+".where"); err != nil {
		return step, err
	}
	if step.Remove, err = compilePatternList(v.LookupPath(cue.ParsePath("remove")), field+".remove"); err != nil {
		return step, err
	}
	if step.Add, err = compilePatternList(v.LookupPath(cue.ParsePath("add")), field+".add"); err != nil {
		return step, err
	}

	guardsVal := v.LookupPath(cue.ParsePath("guards"))
	if guardsVal.Exists() {
		iter, err := guardsVal.List()
		if err != nil {
			return step, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			guard, err := compileGuard(iter.Value(), fmt.Sprintf("%s.guards[%d]", field, i))
			if err != nil {
				return step, err
			}
			step.Guards = append(step.Guards, guard)
		}
	}

	if len(step.Where) == 0 {
		return step, &CompileError{
			Field:   field,
			Message: "step requires a non-empty where clause",
			Pos:     v.Pos(),
		}
	}
	return step, nil
}

func compileGuard(v cue.Value, field string) (ir.Guard, error) {
	var guard ir.Guard

	kind, err := requiredString(v, "kind")
	if err != nil {
		return guard, err
	}
	switch ir.GuardKind(kind) {
	case ir.GuardCountAtLeast, ir.GuardAbsent:
		guard.Kind = ir.GuardKind(kind)
	default:
		return guard, &CompileError{
			Field:   field + ".kind",
			Message: fmt.Sprintf("unknown guard kind %q", kind),
			Pos:     v.Pos(),
		}
	}

	patternVal := v.LookupPath(cue.ParsePath("pattern"))
	if !patternVal.Exists() {
		return guard, &CompileError{
			Field:   field + ".pattern",
			Message: "guard requires a pattern",
			Pos:     v.Pos(),
		}
	}
	if guard.Pattern, err = compilePatternQuad(patternVal, field+".pattern"); err != nil {
		return guard, err
	}

	if guard.Threshold, err = optionalString(v, "threshold"); err != nil {
		return guard, err
	}
	if guard.Kind == ir.GuardCountAtLeast && guard.Threshold == "" {
		return guard, &CompileError{
			Field:   field + ".threshold",
			Message: "countAtLeast guard requires a threshold",
			Pos:     v.Pos(),
		}
	}
	return guard, nil
}

func compilePatternList(v cue.Value, field string) ([]ir.PatternQuad, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ir.PatternQuad
	for i := 0; iter.Next(); i++ {
		pq, err := compilePatternQuad(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out = append(out, pq)
	}
	return out, nil
}

// compilePatternQuad parses a 4-element string list into a pattern quad.
// Tokens starting with "?" are variables.
func compilePatternQuad(v cue.Value, field string) (ir.PatternQuad, error) {
	iter, err := v.List()
	if err != nil {
		return ir.PatternQuad{}, &CompileError{
			Field:   field,
			Message: "pattern must be a [subject, predicate, object, graph] list",
			Pos:     v.Pos(),
		}
	}
	var terms []ir.Term
	for iter.Next() {
		tok, err := iter.Value().String()
		if err != nil {
			return ir.PatternQuad{}, &CompileError{
				Field:   field,
				Message: "pattern elements must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		terms = append(terms, ir.ParseTerm(tok))
	}
	if len(terms) != 4 {
		return ir.PatternQuad{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("pattern has %d elements, want 4", len(terms)),
			Pos:     v.Pos(),
		}
	}
	return ir.PatternQuad{
		Subject:   terms[0],
		Predicate: terms[1],
		Object:    terms[2],
		Graph:     terms[3],
	}, nil
}

func compileRules(v cue.Value) (ir.RuleSet, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var rules ir.RuleSet
	for i := 0; iter.Next(); i++ {
		rule, err := compileRule(iter.Value(), fmt.Sprintf("rules[%d]", i))
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compileRule(v cue.Value, field string) (ir.InferenceRule, error) {
	var rule ir.InferenceRule
	var err error

	if rule.ID, err = requiredString(v, "id"); err != nil {
		return rule, err
	}

	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	if patternsVal.Exists() {
		iter, err := patternsVal.List()
		if err != nil {
			return rule, formatCUEError(err)
		}
		for iter.Next() {
			id, err := iter.Value().String()
			if err != nil {
				return rule, formatCUEError(err)
			}
			rule.Patterns = append(rule.Patterns, id)
		}
	}

	if rule.Where, err = compilePatternList(v.LookupPath(cue.ParsePath("where")), field+".where"); err != nil {
		return rule, err
	}
	if rule.Produce, err = compilePatternList(v.LookupPath(cue.ParsePath("produce")), field+".produce"); err != nil {
		return rule, err
	}

	guardsVal := v.LookupPath(cue.ParsePath("guards"))
	if guardsVal.Exists() {
		iter, err := guardsVal.List()
		if err != nil {
			return rule, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			guard, err := compileGuard(iter.Value(), fmt.Sprintf("%s.guards[%d]", field, i))
			if err != nil {
				return rule, err
			}
			rule.Guards = append(rule.Guards, guard)
		}
	}

	if len(rule.Where) == 0 {
		return rule, &CompileError{Field: field, Message: "rule requires a where clause", Pos: v.Pos()}
	}
	if len(rule.Produce) == 0 {
		return rule, &CompileError{Field: field, Message: "rule requires a produce clause", Pos: v.Pos()}
	}
	return rule, nil
}

func requiredString(v cue.Value, path string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(path))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", &CompileError{
			Field:   path,
			Message: path + " must be a string",
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(path))
	if !fieldVal.Exists() {
		return "", nil
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", &CompileError{
			Field:   path,
			Message: path + " must be a string",
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}
