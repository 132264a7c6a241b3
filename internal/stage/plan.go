package stage

// CommandDescriber is implemented by executors that can report the command
// line they would run for a unit.
type CommandDescriber interface {
	Argv(unit string) []string
}

// UnitPlan is what a run would do with one unit.
type UnitPlan struct {
	Unit   string   `json:"unit"`
	Path   string   `json:"path"`
	Exists bool     `json:"exists"`
	Argv   []string `json:"argv,omitempty"`
}

// StagePlan lists the unit plans of one stage in declared order.
type StagePlan struct {
	Name  string     `json:"name"`
	Units []UnitPlan `json:"units"`
}

// Plan resolves units the way a run would, without executing anything.
// A non-empty name plans that stage alone. Otherwise the canonical order is
// planned, through until (inclusive) when until is set.
func (r *Runner) Plan(name, until string) ([]StagePlan, error) {
	var names []string
	switch {
	case name != "":
		if _, ok := r.reg.Lookup(name); !ok {
			return nil, &UnknownStageError{Name: name, Available: r.reg.Names()}
		}
		names = []string{name}
	default:
		names = r.reg.Order()
		if until != "" {
			idx := indexOf(names, until)
			if idx < 0 {
				return nil, &UnknownStageError{Name: until, Available: names}
			}
			names = names[:idx+1]
		}
	}

	describer, _ := r.exec.(CommandDescriber)
	plans := make([]StagePlan, 0, len(names))
	for _, n := range names {
		st, _ := r.reg.Lookup(n)
		sp := StagePlan{Name: n, Units: make([]UnitPlan, 0, len(st.Units))}
		for _, u := range st.Units {
			p := r.resolve(u)
			up := UnitPlan{Unit: u, Path: p, Exists: r.exists(p)}
			if up.Exists && describer != nil {
				up.Argv = describer.Argv(u)
			}
			sp.Units = append(sp.Units, up)
		}
		plans = append(plans, sp)
	}
	return plans, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
