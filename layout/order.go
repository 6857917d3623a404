package layout

import (
	"hash/fnv"

	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
)

type sectionNode struct {
	section *Section
	id      int64
}

func (n *sectionNode) ID() int64 {
	return n.id
}

type orderer struct {
	nodes map[*Section]*sectionNode
}

func (o *orderer) makeNode(section *Section) *sectionNode {
	// Look up an existing node for this section.
	if node, ok := o.nodes[section]; ok {
		return node
	}

	// Make a new node for this section.
	hasher := fnv.New64()
	hasher.Write([]byte(section.Name))
	node := &sectionNode{
		section: section,
		id:      int64(hasher.Sum64()),
	}
	o.nodes[section] = node
	return node
}

// computeOrder sorts the placeable sections topologically so that flash
// contents come out as vectors, code, rodata, then the initialized data
// templates, and RAM contents as data then bss. Sections of the same kind
// keep their input order. The stack is pinned to the top of RAM and is not
// part of the ordering.
func computeOrder(sections []*Section) ([]*Section, error) {
	o := orderer{nodes: map[*Section]*sectionNode{}}
	graph := multi.NewDirectedGraph()

	// Group the sections by kind, preserving input order within a kind.
	byKind := map[Kind][]*Section{}
	for _, section := range sections {
		if section.Kind == KindStack {
			continue
		}
		byKind[section.Kind] = append(byKind[section.Kind], section)
	}

	// Chain the groups in placement order. The result is a single dependency
	// chain, so the topological order is unique.
	var chain []*Section
	for _, kind := range []Kind{KindVectors, KindCode, KindRodata, KindData, KindBss} {
		chain = append(chain, byKind[kind]...)
	}
	if len(chain) == 0 {
		return nil, nil
	}

	graph.AddNode(o.makeNode(chain[0]))
	for i := 1; i < len(chain); i++ {
		prev := o.makeNode(chain[i-1])
		next := o.makeNode(chain[i])
		graph.SetLine(graph.NewLine(prev, next))
	}

	sorted, sortErr := topo.Sort(graph)
	if sortErr != nil {
		return nil, sortErr
	}

	ordered := make([]*Section, len(sorted))
	for i, node := range sorted {
		ordered[i] = node.(*sectionNode).section
	}

	return ordered, nil
}
