// Package module implements the module merger (C3): it discovers
// `.dmz` units across a set of include directories, merges declarations
// that share a module path into one tree regardless of which file
// contributed them, and maintains the registry of module paths that
// importers must be able to resolve.
package module

import (
	"strings"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/token"
)

// Node is one level of the merged module tree. The root node (Name ==
// "", Path == nil) holds every declaration from files with no `module`
// header; every other node corresponds to one path segment of some
// file's `module A::B::C;` declaration, nested the way spec.md's
// "nests declarations into the innermost name" describes — a file's
// flat Decls list is attached at the node found by walking its
// Module.Path from the root, creating intermediate nodes as needed.
type Node struct {
	Name     string
	Path     []string
	Pos      token.Pos // position of the first module declaration that produced this node
	Decls    []ast.Decl
	Children map[string]*Node
}

func newNode(name string, path []string, pos token.Pos) *Node {
	owned := make([]string, len(path))
	copy(owned, path)
	return &Node{Name: name, Path: owned, Pos: pos, Children: map[string]*Node{}}
}

// PathString renders Path joined the way source-level paths are
// written, e.g. "a::b::c". The root node's PathString is "".
func (n *Node) PathString() string { return strings.Join(n.Path, "::") }

// Lookup walks path from n and returns the node at the end of it, or
// nil if any segment is missing.
func (n *Node) Lookup(path []string) *Node {
	cur := n
	for _, seg := range path {
		child, ok := cur.Children[seg]
		if !ok {
			return nil
		}
		cur = child
	}
	return cur
}

// FindDecl returns the declaration named name directly inside n (not
// its children), or nil if there is none.
func (n *Node) FindDecl(name string) ast.Decl {
	for _, d := range n.Decls {
		if declName(d) == name {
			return d
		}
	}
	return nil
}

// ImportEntry records one `import A::B::C [as D];` occurrence, together
// with the module path of the file that wrote it, so the merger can
// validate resolvability and detect import cycles.
type ImportEntry struct {
	From  []string // module path of the declaring file ("" segments => root)
	Path  []string // the imported path
	Alias string
	Pos   token.Pos
}

func (e *ImportEntry) fromKey() string { return strings.Join(e.From, "::") }
func (e *ImportEntry) pathKey() string { return strings.Join(e.Path, "::") }

// Tree is the fully merged output of one C3 pass: one module forest
// plus every import edge recorded while building it, validated against
// each other by Merger.Validate.
type Tree struct {
	Root    *Node
	Imports []*ImportEntry
}

func newTree() *Tree {
	return &Tree{Root: newNode("", nil, token.Pos{})}
}

// declName extracts the identifier used for duplicate/merge detection
// from any top-level declaration kind. Mirrors the original merger's
// own behavior of matching purely by identifier string regardless of
// declaration kind — a member function and a free function that share
// a name still collide, because the original never disambiguates by
// struct owner at merge time either (see DESIGN.md).
func declName(d ast.Decl) string {
	switch v := d.(type) {
	case *ast.FuncDecl:
		return v.Name
	case *ast.StructDecl:
		return v.Name
	case *ast.VarDecl:
		return v.Name
	case *ast.ErrGroupDecl:
		return v.Name
	case *ast.TestDecl:
		return v.Name
	default:
		return ""
	}
}
