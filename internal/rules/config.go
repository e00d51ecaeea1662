package rules

// Config is the rule framework's run configuration (spec §4.3).
type Config struct {
	IgnoreRules         map[string]bool
	SeverityOverrides   map[string]Severity
	FailureThreshold    Severity
	DisableIgnorePragma bool
	NoFail              bool
}

// NewConfig returns a Config with an empty threshold (everything passes) and no overrides.
func NewConfig() Config {
	return Config{
		IgnoreRules:       map[string]bool{},
		SeverityOverrides: map[string]Severity{},
		FailureThreshold:  SeverityStyle,
	}
}

// EffectiveSeverity returns the override for code if present, else def.
func (c Config) EffectiveSeverity(code string, def Severity) Severity {
	if sev, ok := c.SeverityOverrides[code]; ok {
		return sev
	}
	return def
}

// Filter applies the framework's filtering order (spec §4.3): ignore set → pragma set → severity
// override → threshold. The ignore set drops a rule's diagnostics entirely before the pragma
// lookup ever runs, so a pragma can't "un-ignore" a globally disabled rule.
func Filter(diags []Diagnostic, cfg Config, pragmas PragmaSet) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if cfg.IgnoreRules[d.Code] {
			continue
		}
		if !cfg.DisableIgnorePragma && pragmas.Suppresses(d.Line, d.Code) {
			continue
		}
		if sev, ok := cfg.SeverityOverrides[d.Code]; ok {
			d.Severity = sev
		}
		if d.Severity < cfg.FailureThreshold {
			continue
		}
		out = append(out, d)
	}
	return out
}
