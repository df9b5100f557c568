package extension

import "fmt"

// Severity ranks a finding. Errors invalidate the containing IR;
// warnings are reported and tolerated.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one validation or compilation observation tied to a
// component and source file. Findings are data: they accumulate across
// a resolution instead of aborting it.
type Finding struct {
	Component string   `json:"component"`
	File      string   `json:"file,omitempty"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}

func (f Finding) String() string {
	if f.File != "" {
		return fmt.Sprintf("%s: %s: %s: %s", f.Severity, f.Component, f.File, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Component, f.Message)
}

// Errorf builds an error-severity finding.
func Errorf(component, file, format string, args ...any) Finding {
	return Finding{
		Component: component,
		File:      file,
		Message:   fmt.Sprintf(format, args...),
		Severity:  SeverityError,
	}
}

// Warnf builds a warning-severity finding.
func Warnf(component, file, format string, args ...any) Finding {
	return Finding{
		Component: component,
		File:      file,
		Message:   fmt.Sprintf(format, args...),
		Severity:  SeverityWarning,
	}
}

// HasErrors reports whether any finding carries error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns the findings carrying the given severity, in order.
func Filter(findings []Finding, sev Severity) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
