package presentation

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/positioning"
)

// RenderTree draws the positioning tree of m, one line per positioned
// component. Components whose parent could not be linked carry the error.
// Under the strict policy the tree is still drawn and the error returned.
func RenderTree(m *component.Model) (string, error) {
	roots, err := m.Tree().Roots()

	t := tree.Root(fmt.Sprintf("model %s", m.ID())).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumeratorStyle).
		RootStyle(rootStyle)
	for _, root := range roots {
		t.Child(subtree(root))
	}
	return t.String(), err
}

func subtree(n *positioning.Node) any {
	label := nodeLabel(n)
	children := n.Children()
	if len(children) == 0 {
		return label
	}
	t := tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumeratorStyle)
	for _, child := range children {
		t.Child(subtree(child))
	}
	return t
}

func nodeLabel(n *positioning.Node) string {
	label := uidStyle.Render(n.UID())
	if c, ok := n.Component().(component.Component); ok {
		label += " " + kindStyle.Render(string(c.Kind()))
	}
	if err := n.Err(); err != nil {
		label += " " + errorStyle.Render("! "+err.Error())
	}
	return label
}
