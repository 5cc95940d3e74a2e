package testutil

import (
	"github.com/weftlabs/weft/internal/ir"
)

// NodeQuads returns the four structural quads describing a workflow node:
// type, split, join, and pattern binding.
func NodeQuads(graph, node, split, join, pattern string) []ir.Quad {
	return []ir.Quad{
		{Subject: node, Predicate: ir.PredType, Object: "task", Graph: graph},
		{Subject: node, Predicate: ir.PredSplit, Object: split, Graph: graph},
		{Subject: node, Predicate: ir.PredJoin, Object: join, Graph: graph},
		{Subject: node, Predicate: ir.PredPattern, Object: pattern, Graph: graph},
	}
}

// StatusQuad returns a single wf:status quad.
func StatusQuad(graph, node, status string) ir.Quad {
	return ir.Quad{Subject: node, Predicate: ir.PredStatus, Object: status, Graph: graph}
}

// FlowQuad returns a wf:flowsTo edge.
func FlowQuad(graph, from, to string) ir.Quad {
	return ir.Quad{Subject: from, Predicate: ir.PredFlowsTo, Object: to, Graph: graph}
}

// ChainQuads builds a linear sequence of wcp1 nodes joined by flow edges.
// The first node starts Enabled, the rest Pending.
func ChainQuads(graph string, nodes ...string) []ir.Quad {
	var quads []ir.Quad
	for i, n := range nodes {
		quads = append(quads, NodeQuads(graph, n, "none", "none", "wcp1-sequence")...)
		status := ir.StatusPending
		if i == 0 {
			status = ir.StatusEnabled
		}
		quads = append(quads, StatusQuad(graph, n, status))
		if i+1 < len(nodes) {
			quads = append(quads, FlowQuad(graph, n, nodes[i+1]))
		}
	}
	return quads
}
