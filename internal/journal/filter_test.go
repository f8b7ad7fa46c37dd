package journal

import "testing"

func TestFilterCompile_ZeroValue(t *testing.T) {
	where, params := Filter{}.compile()

	if where != "" {
		t.Errorf("where = %q, want empty", where)
	}
	if len(params) != 0 {
		t.Errorf("params = %v, want none", params)
	}
}

func TestFilterCompile_ProgramOnly(t *testing.T) {
	where, params := Filter{Program: "main"}.compile()

	if where != " WHERE program = ?" {
		t.Errorf("where = %q", where)
	}
	if len(params) != 1 || params[0] != "main" {
		t.Errorf("params = %v, want [main]", params)
	}
}

func TestFilterCompile_AllConditions(t *testing.T) {
	f := Filter{Program: "main", Pass: "hoist", ChangedOnly: true}
	where, params := f.compile()

	want := " WHERE program = ? AND pass = ? AND fingerprint_before <> fingerprint_after"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(params) != 2 || params[0] != "main" || params[1] != "hoist" {
		t.Errorf("params = %v, want [main hoist]", params)
	}
}
