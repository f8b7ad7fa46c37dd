package journal

import "strings"

// Filter narrows ListRuns results. The zero value matches every run.
type Filter struct {
	// Program keeps only runs recorded for this program name.
	// Empty matches all programs.
	Program string

	// Pass keeps only runs recorded for this pass name.
	// Empty matches all passes.
	Pass string

	// ChangedOnly keeps only runs whose pass altered the program,
	// i.e. whose before and after fingerprints differ.
	ChangedOnly bool
}

// compile converts the filter into a WHERE clause fragment and its
// parameters. Returns an empty clause for the zero filter.
//
// Values are always parameterized, never interpolated.
func (f Filter) compile() (string, []any) {
	var conds []string
	var params []any

	if f.Program != "" {
		conds = append(conds, "program = ?")
		params = append(params, f.Program)
	}
	if f.Pass != "" {
		conds = append(conds, "pass = ?")
		params = append(params, f.Pass)
	}
	if f.ChangedOnly {
		conds = append(conds, "fingerprint_before <> fingerprint_after")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}
