// Package patch builds graphs from declarative descriptions: a list of
// {type, name, params} records plus a list of connection records, the format
// produced by external composition front ends.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/modpatch/modpatch-go/internal/graph"
	"github.com/modpatch/modpatch-go/internal/ugen"
)

// ErrUnknownUGenType reports a ugen type tag with no registered factory.
var ErrUnknownUGenType = errors.New("unknown ugen type")

// UGenDef declares one instance: its factory type tag, its unique name in
// the graph, and initial parameter values.
type UGenDef struct {
	Type   string             `json:"type"`
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params,omitempty"`
}

// ConnectionDef declares one edge. Feedback marks a designated feedback
// break that is allowed to close a loop.
type ConnectionDef struct {
	From     string `json:"from"`
	Output   int    `json:"output"`
	To       string `json:"to"`
	Input    int    `json:"input"`
	Feedback bool   `json:"feedback,omitempty"`
}

// Description is a complete declarative patch.
type Description struct {
	UGens       []UGenDef       `json:"ugens"`
	Connections []ConnectionDef `json:"connections"`
}

// ParseJSON decodes a description.
func ParseJSON(data []byte) (*Description, error) {
	var desc Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse patch description: %w", err)
	}
	return &desc, nil
}

var factories = map[string]func() ugen.UGen{
	"sine":     func() ugen.UGen { return ugen.NewSine() },
	"saw":      func() ugen.UGen { return ugen.NewSaw() },
	"triangle": func() ugen.UGen { return ugen.NewTriangle() },
	"pulse":    func() ugen.UGen { return ugen.NewPulse() },
	"table":    func() ugen.UGen { return ugen.NewTable() },
	"gain":     func() ugen.UGen { return ugen.NewGain() },
	"const":    func() ugen.UGen { return ugen.NewConst(0) },
}

// Types lists the registered type tags.
func Types() []string {
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// NewUGen instantiates a node for a type tag.
func NewUGen(typeTag string) (ugen.UGen, error) {
	factory, ok := factories[typeTag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUGenType, typeTag)
	}
	return factory(), nil
}

// Build validates every record of desc and then applies it to g. A partially
// invalid description leaves the graph untouched: nodes are constructed and
// parameterized before anything is added, and connection endpoints and
// indices are checked up front.
func Build(g *graph.Graph, desc *Description) error {
	built := make(map[string]ugen.UGen, len(desc.UGens))
	order := make([]string, 0, len(desc.UGens))
	for _, def := range desc.UGens {
		if _, dup := built[def.Name]; dup {
			return fmt.Errorf("%w: %q", graph.ErrDuplicateName, def.Name)
		}
		if _, exists := g.Module(def.Name); exists {
			return fmt.Errorf("%w: %q", graph.ErrDuplicateName, def.Name)
		}
		node, err := NewUGen(def.Type)
		if err != nil {
			return err
		}
		for name, value := range def.Params {
			if err := node.SetParameter(name, value); err != nil {
				return fmt.Errorf("ugen %q: %w", def.Name, err)
			}
		}
		built[def.Name] = node
		order = append(order, def.Name)
	}

	for _, c := range desc.Connections {
		from, err := endpoint(g, built, c.From)
		if err != nil {
			return err
		}
		to, err := endpoint(g, built, c.To)
		if err != nil {
			return err
		}
		if c.Output < 0 || c.Output >= from.NumOutputs() {
			return fmt.Errorf("%w: output %d of %q (has %d)", graph.ErrIndexOutOfRange, c.Output, c.From, from.NumOutputs())
		}
		if c.Input < 0 || c.Input >= to.NumInputs() {
			return fmt.Errorf("%w: input %d of %q (has %d)", graph.ErrIndexOutOfRange, c.Input, c.To, to.NumInputs())
		}
	}

	// Everything checked; apply. Roll back added modules if the graph still
	// rejects something (a concurrent control-plane edit, for instance).
	for _, name := range order {
		if err := g.AddModule(name, built[name]); err != nil {
			rollback(g, order, name)
			return err
		}
	}
	for _, c := range desc.Connections {
		var err error
		if c.Feedback {
			err = g.ConnectFeedback(c.From, c.Output, c.To, c.Input)
		} else {
			err = g.Connect(c.From, c.Output, c.To, c.Input)
		}
		if err != nil {
			rollback(g, order, "")
			return err
		}
	}
	return nil
}

func endpoint(g *graph.Graph, built map[string]ugen.UGen, name string) (ugen.UGen, error) {
	if node, ok := built[name]; ok {
		return node, nil
	}
	if node, ok := g.Module(name); ok {
		return node, nil
	}
	return nil, fmt.Errorf("%w: %q", graph.ErrUnknownModule, name)
}

func rollback(g *graph.Graph, order []string, failed string) {
	for _, name := range order {
		if name == failed {
			return
		}
		_ = g.RemoveModule(name)
	}
}
