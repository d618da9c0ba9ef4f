// Package ast declares the minimal AST contract the analyzer core consumes.
// Per spec.md section 1, a real front end (parser, semantic analyzer, code
// generator) is an external collaborator; this package defines only the
// stable node-identity shape (NodeId, Node, Pos) that such a front end would
// produce, plus a representative set of ES module statement/expression
// kinds sufficient to exercise the analyzer end to end. Additional node
// kinds plug into internal/visit without any change to the core.
package ast

import (
	"github.com/jsshaker/shaker/internal/depgraph"
)

// NodeId identifies a node for the lifetime of one analysis. It is opaque
// to the analyzer core: equality is by integer only.
type NodeId = depgraph.NodeId

// Position is a source span, 1-indexed on both ends as required by the
// driver's diagnostics format.
type Position struct {
	Path                       string
	StartLine, StartCol        int
	EndLine, EndCol            int
}

// Node is implemented by every AST node.
type Node interface {
	ID() NodeId
	Pos() Position
}

// Base is embedded by every concrete node type to supply ID() and Pos().
type Base struct {
	id  NodeId
	pos Position
}

func (b Base) ID() NodeId    { return b.id }
func (b Base) Pos() Position { return b.pos }

// NewBase constructs the embeddable identity/position pair for a node. The
// front end calls this once per node it allocates.
func NewBase(id NodeId, pos Position) Base {
	return Base{id: id, pos: pos}
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ModuleDecl is implemented by import/export declarations, which require
// module-loader involvement beyond ordinary statement execution.
type ModuleDecl interface {
	Stmt
	moduleDeclNode()
}
