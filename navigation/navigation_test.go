package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/navigation"
)

func TestDefaultMenu(t *testing.T) {
	m, err := navigation.Default()
	require.NoError(t, err)
	require.Len(t, m.Sections, 4)

	hr, ok := m.Module("hr")
	require.True(t, ok)
	assert.Equal(t, "Human Resources", hr.Title)
	assert.Equal(t, "/hr/departments", hr.Items[0].Path)

	_, ok = m.Module("finance")
	assert.False(t, ok)
}

func TestParse_Rejects(t *testing.T) {
	_, err := navigation.Parse([]byte("sections: []"))
	assert.Error(t, err)

	_, err = navigation.Parse([]byte(`
sections:
  - title: A
    items:
      - {label: X, path: relative}
`))
	assert.Error(t, err)

	_, err = navigation.Parse([]byte(`
sections:
  - title: A
    items:
      - {label: X, path: /x}
  - title: B
    items:
      - {label: Y, path: /x}
`))
	assert.ErrorContains(t, err, "duplicate")

	_, err = navigation.Parse([]byte("sections: [unclosed"))
	assert.Error(t, err)
}
