package transys

import (
	"sort"

	"invsynth/internal/formula"
	"invsynth/internal/util"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Problem is the YAML form of a System.
//
//	vars: [p, q]
//	init: p & !q
//	axioms: [p | q]
//	actions:
//	  - name: grow
//	    requires: p
//	    assign: {q: q | p}
//	    havoc: []
//	conjectures: [p | q]
//	safety: p | q
type Problem struct {
	Vars        []string    `yaml:"vars"`
	Init        string      `yaml:"init"`
	Axioms      []string    `yaml:"axioms"`
	Actions     []ActionDef `yaml:"actions"`
	Conjectures []string    `yaml:"conjectures"`
	Safety      string      `yaml:"safety"`
}

type ActionDef struct {
	Name     string            `yaml:"name"`
	Requires string            `yaml:"requires"`
	Assign   map[string]string `yaml:"assign"`
	Havoc    []string          `yaml:"havoc"`
}

// Parse decodes a YAML problem and builds its System.
func Parse(data []byte) (*System, error) {
	var p Problem
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, errors.Wrap(err, "UnmarshalStrict")
	}
	return p.Build()
}

// LoadFile reads a problem from a path or an http(s) URL.
func LoadFile(path string) (*System, error) {
	data, err := util.ReadSource(path)
	if err != nil {
		return nil, errors.Wrap(err, "ReadSource")
	}
	sys, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Parse %s", path)
	}
	return sys, nil
}

func parseOr(src string, dflt formula.Formula, what string) (formula.Formula, error) {
	if src == "" {
		return dflt, nil
	}
	f, err := formula.Parse(src)
	if err != nil {
		return formula.Formula{}, errors.Wrapf(err, "Parse %s", what)
	}
	return f, nil
}

func (p *Problem) Build() (*System, error) {
	init, err := parseOr(p.Init, formula.True(), "init")
	if err != nil {
		return nil, err
	}
	axioms := make([]formula.Formula, 0, len(p.Axioms))
	for _, src := range p.Axioms {
		f, err := parseOr(src, formula.True(), "axiom")
		if err != nil {
			return nil, err
		}
		axioms = append(axioms, f)
	}
	actions := make([]*Action, 0, len(p.Actions))
	for _, def := range p.Actions {
		a, err := def.build()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	sys, err := NewSystem(p.Vars, init, formula.And(axioms...), actions...)
	if err != nil {
		return nil, errors.Wrap(err, "NewSystem")
	}
	for _, src := range p.Conjectures {
		f, err := parseOr(src, formula.True(), "conjecture")
		if err != nil {
			return nil, err
		}
		if err := sys.AddConjecture(f); err != nil {
			return nil, errors.Wrap(err, "AddConjecture")
		}
	}
	safety, err := parseOr(p.Safety, formula.True(), "safety")
	if err != nil {
		return nil, err
	}
	if err := sys.SetSafety(safety); err != nil {
		return nil, errors.Wrap(err, "SetSafety")
	}
	return sys, nil
}

func (def *ActionDef) build() (*Action, error) {
	what := "action " + def.Name
	requires, err := parseOr(def.Requires, formula.True(), what)
	if err != nil {
		return nil, err
	}
	a := &Action{
		Name:     def.Name,
		Requires: requires,
		Assign:   make(map[string]formula.Formula, len(def.Assign)),
		Havoc:    append([]string(nil), def.Havoc...),
	}
	vars := make([]string, 0, len(def.Assign))
	for v := range def.Assign {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	for _, v := range vars {
		f, err := formula.Parse(def.Assign[v])
		if err != nil {
			return nil, errors.Wrapf(err, "Parse %s.%s", what, v)
		}
		a.Assign[v] = f
	}
	return a, nil
}
