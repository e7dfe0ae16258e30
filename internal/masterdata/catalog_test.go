package masterdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcl/printrun/internal/domain/models"
)

func TestLoadEmbeddedSeed(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Len(t, c.Publications(""), 14)
	assert.Len(t, c.Machines(), 4)
	assert.Len(t, c.DowntimeReasons(), 6)
	assert.Len(t, c.NewsprintTypes(), 3)
	assert.Len(t, c.Users(), 13)

	m, ok := c.Machine(2)
	require.True(t, ok)
	assert.Equal(t, "High Line", m.Name)

	r, ok := c.DowntimeReason(1)
	require.True(t, ok)
	assert.Equal(t, "mechanical", r.Category)

	for _, u := range c.Users() {
		assert.Empty(t, u.PasswordHash, "embedded seed must not ship credentials")
	}
}

func TestPublicationsByType(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Len(t, c.Publications(models.PublicationVK), 5)
	assert.Len(t, c.Publications(models.PublicationNamma), 4)

	osp := c.Publications(models.PublicationOSP)
	assert.Len(t, osp, 9)
	for _, p := range osp {
		assert.NotEqual(t, models.PublicationVK, p.Type)
	}
}

func TestUserLookups(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	u, ok := c.UserByEmail("  MANGALORE@printrun.example ")
	require.True(t, ok)
	assert.Equal(t, int64(1), u.ID)

	_, ok = c.UserByEmail("nobody@printrun.example")
	assert.False(t, ok)

	assert.Equal(t, []int64{11, 12, 13}, c.UserIDsAtLocation("bangalore"))
	assert.NotNil(t, c.UserIDsAtLocation("Atlantis"))
	assert.Empty(t, c.UserIDsAtLocation("Atlantis"))

	locs := c.Locations()
	assert.Contains(t, locs, "Mangalore")
	assert.IsIncreasing(t, locs)
}

func TestNameResolution(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	pubID := int64(5)
	custom := "Election Special"
	assert.Equal(t, "SAMYUKTHA KARNATAKA - BAGALKOT", c.PublicationName(models.ProductionRecord{PublicationID: &pubID}))
	assert.Equal(t, custom, c.PublicationName(models.ProductionRecord{CustomPublicationName: &custom}))
	assert.Equal(t, "Unknown", c.MachineName(99))
	assert.Equal(t, "Imported", c.NewsprintName(3))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
machines:
  - { id: 7, name: Test Press, code: TP }
users:
  - { id: 1, email: a@b.c, name: A, role: admin, password_hash: "$2a$04$abc" }
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Press", c.MachineName(7))
	u, ok := c.User(1)
	require.True(t, ok)
	assert.Equal(t, "$2a$04$abc", u.PasswordHash)
	assert.True(t, u.IsAdmin())
}

func TestParseRejectsBadSeed(t *testing.T) {
	cases := map[string]string{
		"duplicate machine": "machines:\n  - {id: 1, name: A}\n  - {id: 1, name: B}\n",
		"unknown type":      "publications:\n  - {id: 1, name: A, type: TABLOID}\n",
		"unknown role":      "users:\n  - {id: 1, email: a@b.c, role: root}\n",
		"duplicate email":   "users:\n  - {id: 1, email: a@b.c, role: user}\n  - {id: 2, email: A@B.C, role: user}\n",
		"not yaml":          "machines: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
