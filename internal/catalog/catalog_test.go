package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryEntityHasCatalog(t *testing.T) {
	for _, e := range All {
		assert.NotEmpty(t, e.Catalog(), "entity %s", e)
	}
}

func TestReservedFields(t *testing.T) {
	for _, e := range []Entity{Groups, People, Devices} {
		for _, name := range []string{FieldID, FieldExternalKey, FieldRecipientType} {
			spec, ok := e.Catalog().Lookup(name)
			require.True(t, ok, "%s.%s", e, name)
			assert.True(t, spec.Reserved, "%s.%s should be reserved", e, name)
		}
	}

	spec, ok := Sites.Catalog().Lookup(FieldExternalKey)
	require.True(t, ok)
	assert.True(t, spec.Reserved)
}

func TestCatalogNamesAreUnique(t *testing.T) {
	for _, e := range All {
		seen := map[string]bool{}
		for _, name := range e.Catalog().Names() {
			assert.False(t, seen[name], "duplicate %s.%s", e, name)
			seen[name] = true
		}
	}
}

func TestDeviceCanonicalOrder(t *testing.T) {
	c := Devices.Catalog()
	order := []string{"owner", "targetName", "name", "deviceType", "emailAddress", "phoneNumber",
		"delay", "externallyOwned", "sequence", "priorityThreshold", "externalKey"}
	for i := 1; i < len(order); i++ {
		assert.Less(t, c.Index(order[i-1]), c.Index(order[i]), "%s before %s", order[i-1], order[i])
	}
}

func TestRelationalFields(t *testing.T) {
	spec, ok := People.Catalog().Lookup("roles")
	require.True(t, ok)
	assert.True(t, spec.Relational())
	assert.Equal(t, List, spec.Kind)

	spec, ok = GroupMembers.Catalog().Lookup(FieldMembers)
	require.True(t, ok)
	assert.False(t, spec.Relational())
	assert.Equal(t, List, spec.Kind)
}

func TestPrimaryKeys(t *testing.T) {
	assert.Equal(t, FieldTargetName, Groups.PrimaryKey())
	assert.Equal(t, FieldTargetName, People.PrimaryKey())
	assert.Equal(t, FieldTargetName, Devices.PrimaryKey())
	assert.Equal(t, FieldName, Sites.PrimaryKey())
	assert.Equal(t, "", GroupMembers.PrimaryKey())
	assert.False(t, GroupMembers.Mirrorable())
}

func TestParse(t *testing.T) {
	e, err := Parse("groupMembers")
	require.NoError(t, err)
	assert.Equal(t, GroupMembers, e)

	_, err = Parse("teams")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "list", List.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
