package graph

import (
	"fmt"
	"strings"

	"github.com/modpatch/modpatch-go/internal/ugen"
)

// inputBinding describes where one input slot's samples come from. With a
// single producer the slot aliases the producer's buffer directly; with
// several, their samples are summed into scratch.
type inputBinding struct {
	producers [][]float64
	scratch   []float64
}

type planNode struct {
	node    ugen.UGen
	outputs [][]float64 // one buffer per output slot, capacity maxFrames
	inputs  []inputBinding
	inbufs  [][]float64 // views handed to Process, reused every block
	outbufs [][]float64
}

// plan is an immutable compiled schedule: modules in topological order with
// all buffers preallocated. A plan with err set refuses to run.
type plan struct {
	err       error
	nodes     []*planNode
	byName    map[string]*planNode
	maxFrames int
}

// compile builds a plan from the current topology. Producers are ordered
// before consumers (Kahn's algorithm over non-feedback edges); modules with
// no mutual constraint keep their insertion order. A cycle among
// non-feedback edges yields a plan carrying ErrGraphCycle.
func compile(order []string, modules map[string]ugen.UGen, conns []connection, maxFrames int) *plan {
	sorted, cycle := toposort(order, conns)
	p := &plan{
		byName:    make(map[string]*planNode, len(order)),
		maxFrames: maxFrames,
	}
	if cycle != nil {
		p.err = fmt.Errorf("%w: %s", ErrGraphCycle, strings.Join(cycle, ", "))
		return p
	}

	for _, name := range sorted {
		node := modules[name]
		pn := &planNode{
			node:    node,
			outputs: make([][]float64, node.NumOutputs()),
			inputs:  make([]inputBinding, node.NumInputs()),
			inbufs:  make([][]float64, node.NumInputs()),
			outbufs: make([][]float64, node.NumOutputs()),
		}
		for i := range pn.outputs {
			pn.outputs[i] = make([]float64, maxFrames)
		}
		p.nodes = append(p.nodes, pn)
		p.byName[name] = pn
	}

	for _, c := range conns {
		dst := p.byName[c.to]
		src := p.byName[c.from]
		b := &dst.inputs[c.input]
		b.producers = append(b.producers, src.outputs[c.output])
	}
	for _, pn := range p.nodes {
		for i := range pn.inputs {
			if len(pn.inputs[i].producers) > 1 {
				pn.inputs[i].scratch = make([]float64, maxFrames)
			}
		}
	}
	return p
}

// toposort orders names producer-before-consumer using only non-feedback
// edges, breaking ties by insertion order. On a cycle it returns the names
// left unordered.
func toposort(order []string, conns []connection) (sorted []string, cycle []string) {
	indegree := make(map[string]int, len(order))
	for _, name := range order {
		indegree[name] = 0
	}
	for _, c := range conns {
		if !c.feedback {
			indegree[c.to]++
		}
	}

	sorted = make([]string, 0, len(order))
	done := make(map[string]bool, len(order))
	for len(sorted) < len(order) {
		picked := ""
		for _, name := range order {
			if !done[name] && indegree[name] == 0 {
				picked = name
				break
			}
		}
		if picked == "" {
			for _, name := range order {
				if !done[name] {
					cycle = append(cycle, name)
				}
			}
			return nil, cycle
		}
		done[picked] = true
		sorted = append(sorted, picked)
		for _, c := range conns {
			if !c.feedback && c.from == picked {
				indegree[c.to]--
			}
		}
	}
	return sorted, nil
}

// run executes one block. Feedback consumers scheduled before their producer
// simply read the producer's buffer from the previous block; topological
// ordering guarantees everyone else sees this block's freshly computed
// samples.
func (p *plan) run(numFrames int) {
	for _, pn := range p.nodes {
		for i := range pn.inputs {
			b := &pn.inputs[i]
			switch len(b.producers) {
			case 0:
				pn.inbufs[i] = nil
			case 1:
				pn.inbufs[i] = b.producers[0][:numFrames]
			default:
				s := b.scratch[:numFrames]
				for k := range s {
					s[k] = 0
				}
				for _, src := range b.producers {
					src = src[:numFrames]
					for k := range s {
						s[k] += src[k]
					}
				}
				pn.inbufs[i] = s
			}
		}
		for j := range pn.outputs {
			pn.outbufs[j] = pn.outputs[j][:numFrames]
		}
		pn.node.Process(pn.inbufs, pn.outbufs)
	}
}
