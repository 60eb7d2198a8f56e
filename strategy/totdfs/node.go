package totdfs

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// Node is a search tree node. The root carries no thought. Nodes are created
// when a thought survives evaluation and are only mutated by appending
// children.
type Node struct {
	ID      string
	Thought planlib.Thought
	// Steps are the results of executing Thought. Empty for Finish.
	Steps []planlib.Step

	// Parent is a back-reference; the tree is owned through Children.
	Parent   *Node
	Children []*Node
	Depth    int
}

// IsTerminal reports whether the node holds a Finish.
func (n *Node) IsTerminal() bool {
	_, ok := n.Thought.(planlib.Finish)
	return ok
}

// Trajectory returns the steps on the path from the root to n. An ancestor
// holding a Finish is a broken tree and yields ErrInconsistentState.
func (n *Node) Trajectory() ([]planlib.Step, error) {
	var chunks [][]planlib.Step
	for cur := n; cur != nil; cur = cur.Parent {
		switch t := cur.Thought.(type) {
		case nil:
		case planlib.Action, planlib.ActionBatch:
			chunks = append(chunks, cur.Steps)
		case planlib.Finish:
			if cur != n {
				return nil, goerr.Wrap(planlib.ErrInconsistentState, "finish detected as non-terminal node",
					goerr.V("node_id", cur.ID), goerr.V("log", t.Log))
			}
		default:
			return nil, goerr.Wrap(planlib.ErrUnknownThought, "unexpected thought in tree", goerr.V("node_id", cur.ID))
		}
	}

	slices.Reverse(chunks)
	var steps []planlib.Step
	for _, c := range chunks {
		steps = append(steps, c...)
	}
	return steps, nil
}
