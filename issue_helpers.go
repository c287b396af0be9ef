package goseal

import "github.com/reoring/goseal/i18n"

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(path, code, msg string, params map[string]any) Issue {
	return Issue{Path: path, Code: code, Message: msg, Params: params}
}

// Validator accumulates issues inside an entity's Validate method.
//
//	func (b *Book) Validate() error {
//		var v goseal.Validator
//		v.Require(fieldTitle, b.title != "")
//		v.Check(fieldPages, b.pages >= 0, goseal.CodeTooSmall, "page count must not be negative")
//		return v.Err()
//	}
type Validator struct {
	issues Issues
}

// Require records a required issue for field when ok is false.
func (v *Validator) Require(field FieldName, ok bool) {
	if ok {
		return
	}
	v.issues = AppendIssues(v.issues, Issue{
		Path:    "/" + field.Value(),
		Code:    CodeRequired,
		Message: i18n.T(CodeRequired, map[string]string{"field": field.Value()}),
	})
}

// Check records an issue with code and msg for field when ok is false.
func (v *Validator) Check(field FieldName, ok bool, code, msg string) {
	if ok {
		return
	}
	if msg == "" {
		msg = i18n.T(code, map[string]string{"field": field.Value()})
	}
	v.issues = AppendIssues(v.issues, Issue{Path: "/" + field.Value(), Code: code, Message: msg})
}

// RequireComplete records an issue when a nested entity is present but has
// not been completed.
func (v *Validator) RequireComplete(field FieldName, e Entity) {
	if isNilEntity(e) || e.IsComplete() {
		return
	}
	v.issues = AppendIssues(v.issues, Issue{
		Path:    "/" + field.Value(),
		Code:    CodeBusinessRule,
		Message: "nested entity " + e.TypeName().Value() + " is not complete",
	})
}

// Add appends arbitrary issues.
func (v *Validator) Add(more ...Issue) { v.issues = AppendIssues(v.issues, more...) }

// Issues returns the collected issues.
func (v *Validator) Issues() Issues { return v.issues }

// Err returns the collected issues as an error, or nil.
func (v *Validator) Err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return v.issues
}
