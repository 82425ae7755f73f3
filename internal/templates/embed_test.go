package templates_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/airframe/internal/document"
	"github.com/zjrosen/airframe/internal/templates"
)

func TestNames(t *testing.T) {
	require.Equal(t, []string{"demo", "glider"}, templates.Names())
}

func TestTemplates_BuildCleanly(t *testing.T) {
	for _, name := range templates.Names() {
		t.Run(name, func(t *testing.T) {
			data, err := templates.Model(name)
			require.NoError(t, err)

			doc, err := document.Parse(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, name, doc.Name)

			m, err := document.Build(doc)
			require.NoError(t, err)

			roots, err := m.RootComponents()
			require.NoError(t, err)
			require.Len(t, roots, 1, "every template hangs off one fuselage")
		})
	}
}

func TestModel_Unknown(t *testing.T) {
	_, err := templates.Model("zeppelin")
	require.ErrorContains(t, err, "demo, glider")
}
