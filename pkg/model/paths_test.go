package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEntityPath(t *testing.T) {
	valid := []string{
		"model::Trade",
		"model::domain::Trade",
		"a::b",
		"pkg_1::Name_2",
		"model::Trade$projection",
	}
	for _, pth := range valid {
		assert.Truef(t, IsValidEntityPath(pth), "expected %q to be a valid entity path", pth)
	}

	invalid := []string{
		"",
		"Trade",
		"model::",
		"::Trade",
		"model:::Trade",
		"meta::pure::Class",
		"model::do main::Trade",
		"model$x::Trade",
		"model::Trade::",
	}
	for _, pth := range invalid {
		assert.Falsef(t, IsValidEntityPath(pth), "expected %q to be an invalid entity path", pth)
	}
}

func TestIsValidClassifierPath(t *testing.T) {
	assert.True(t, IsValidClassifierPath("meta::pure::metamodel::Class"))
	assert.True(t, IsValidClassifierPath(ProjectConfigurationClassifier))

	assert.False(t, IsValidClassifierPath("model::domain::Trade"))
	assert.False(t, IsValidClassifierPath(""))
	assert.False(t, IsValidClassifierPath("meta::"))
	assert.False(t, IsValidClassifierPath("meta::pure::my class"))
}

func TestIsValidPackagePath(t *testing.T) {
	assert.True(t, IsValidPackagePath("model"))
	assert.True(t, IsValidPackagePath("model::domain"))

	assert.False(t, IsValidPackagePath(""))
	assert.False(t, IsValidPackagePath("model::"))
	assert.False(t, IsValidPackagePath("model::Trade$x"))
}

func TestSplitEntityPath(t *testing.T) {
	pkg, name, ok := SplitEntityPath("model::domain::Trade")
	require.True(t, ok)
	assert.Equal(t, "model::domain", pkg)
	assert.Equal(t, "Trade", name)

	_, _, ok = SplitEntityPath("Trade")
	require.False(t, ok)
}
