package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionIDOrdering(t *testing.T) {
	v1 := VersionID{Major: 1, Minor: 2, Patch: 3}
	v2 := VersionID{Major: 1, Minor: 10, Patch: 0}
	v3 := VersionID{Major: 2}

	assert.True(t, v1.Before(v2))
	assert.True(t, v2.Before(v3))
	assert.True(t, v1.Before(v3))
	assert.False(t, v2.Before(v1))
	assert.True(t, v1.Equals(v1))
	assert.Equal(t, 0, v1.Compare(v1))
}

func TestVersionIDNext(t *testing.T) {
	v := VersionID{Major: 1, Minor: 2, Patch: 3}

	assert.Equal(t, VersionID{Major: 2}, v.NextMajor())
	assert.Equal(t, VersionID{Major: 1, Minor: 3}, v.NextMinor())
	assert.Equal(t, VersionID{Major: 1, Minor: 2, Patch: 4}, v.NextPatch())

	assert.Equal(t, v.NextMajor(), IncrementMajor.Apply(v))
	assert.Equal(t, v.NextMinor(), IncrementMinor.Apply(v))
	assert.Equal(t, v.NextPatch(), IncrementPatch.Apply(v))
}

func TestVersionIDRoundTrip(t *testing.T) {
	v := VersionID{Major: 10, Minor: 0, Patch: 7}
	require.Equal(t, "10.0.7", v.String())

	parsed, err := ParseVersionID("10.0.7")
	require.NoError(t, err)
	assert.Equal(t, v, parsed)

	rendered := v.Format("-")
	require.Equal(t, "10-0-7", rendered)
	parsed, err = ParseVersionIDSep(rendered, "-")
	require.NoError(t, err)
	assert.Equal(t, v, parsed)
}

func TestParseVersionIDRejects(t *testing.T) {
	for _, s := range []string{"", "1", "1.2", "1.2.3.4", "1.2.x", "-1.2.3", "1..3"} {
		_, err := ParseVersionID(s)
		assert.Errorf(t, err, "expected %q to be rejected", s)
	}
}

func TestVersionBounds(t *testing.T) {
	one := uint64(1)
	three := uint64(3)
	bounds := VersionBounds{MinMajor: &one, MaxMajor: &three}
	require.NoError(t, bounds.Validate())

	assert.True(t, bounds.Contains(VersionID{Major: 1}))
	assert.True(t, bounds.Contains(VersionID{Major: 3, Minor: 9}))
	assert.False(t, bounds.Contains(VersionID{Major: 0, Minor: 9}))
	assert.False(t, bounds.Contains(VersionID{Major: 4}))

	inverted := VersionBounds{MinMinor: &three, MaxMinor: &one}
	require.Error(t, inverted.Validate())
}

func TestRevisionAlias(t *testing.T) {
	alias, err := ParseRevisionAlias("BASE")
	require.NoError(t, err)
	assert.Equal(t, AliasBase, alias.Kind)

	alias, err = ParseRevisionAlias("HEAD")
	require.NoError(t, err)
	assert.Equal(t, AliasHead, alias.Kind)

	alias, err = ParseRevisionAlias("1n2o3p4q")
	require.NoError(t, err)
	assert.Equal(t, AliasRevision, alias.Kind)
	assert.Equal(t, RevisionID("1n2o3p4q"), alias.ID)

	_, err = ParseRevisionAlias("")
	require.Error(t, err)
}
