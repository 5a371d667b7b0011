package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// visitFunc is called for every node that references a mesh, with the node's world matrix.
type visitFunc func(nodeIndex, meshIndex int, world mgl32.Mat4) error

// walkNodes traverses the node hierarchy of the default scene depth first and calls
// visit for each mesh node with its accumulated world matrix. Without a scene, all
// root nodes (nodes that are nobody's child) are walked. A document without nodes
// visits every mesh once with the identity matrix.
//
// Parameters:
//   - doc: the parsed document
//   - visit: callback receiving each mesh node
//
// Returns:
//   - error: the first error returned by visit, or a hierarchy error
func walkNodes(doc *gltfDocument, visit visitFunc) error {
	if len(doc.Nodes) == 0 {
		for i := range doc.Meshes {
			if err := visit(-1, i, mgl32.Ident4()); err != nil {
				return err
			}
		}
		return nil
	}

	onPath := make([]bool, len(doc.Nodes))
	var walk func(index int, parent mgl32.Mat4) error
	walk = func(index int, parent mgl32.Mat4) error {
		if index < 0 || index >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", index)
		}
		if onPath[index] {
			return fmt.Errorf("node %d: cycle in node hierarchy", index)
		}
		onPath[index] = true
		defer func() { onPath[index] = false }()

		node := &doc.Nodes[index]
		world := parent.Mul4(nodeLocalMatrix(node))
		if node.Mesh != nil {
			if err := visit(index, *node.Mesh, world); err != nil {
				return err
			}
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range sceneRoots(doc) {
		if err := walk(root, mgl32.Ident4()); err != nil {
			return err
		}
	}
	return nil
}

// sceneRoots returns the root node indices of the default scene, falling back to the
// first scene and then to every parentless node.
func sceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeLocalMatrix returns the node's local transform. An explicit matrix wins over
// translation/rotation/scale; missing components default to identity.
func nodeLocalMatrix(n *gltfNode) mgl32.Mat4 {
	if n.Matrix != nil {
		return mgl32.Mat4(*n.Matrix)
	}

	m := mgl32.Ident4()
	if t := n.Translation; t != nil {
		m = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if r := n.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		if q.Len() > 0 {
			m = m.Mul4(q.Normalize().Mat4())
		}
	}
	if s := n.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}
