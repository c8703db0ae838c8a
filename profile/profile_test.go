package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/keyrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devicesYAML = `
name: devices
collection: devices
slug: [brand, model, serial]
group: [brand, model, year, serial, price]
properties: [sold]
ranges:
  - {name: yearFrom, field: year, cond: $gte}
  - {name: yearTo, field: year, cond: $lte}
branches: {fuzzy: false}
dedup: first
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	p, err := Load(writeProfile(t, devicesYAML))
	require.NoError(t, err)

	assert.Equal(t, "devices", p.Name)
	assert.Equal(t, "devices", p.Collection)
	assert.Equal(t, []string{"brand", "model", "serial"}, p.Slug)
	assert.Equal(t, []string{"sold"}, p.Properties)
	require.Len(t, p.Ranges, 2)
	assert.Equal(t, core.RangeSpec{Name: "yearFrom", Field: "year", Cond: core.OpGte}, p.Ranges[0])

	// Branch keys left out of the document stay enabled
	assert.True(t, p.Branches.Exact)
	assert.True(t, p.Branches.Mixed)
	assert.False(t, p.Branches.Fuzzy)

	spec, err := p.Spec()
	require.NoError(t, err)
	assert.Equal(t, []string{"brand", "model", "year", "serial", "price"}, spec.GroupFields)
	assert.True(t, spec.Options.DisableFuzzy)
	assert.False(t, spec.Options.DisableExact)
	assert.Equal(t, core.DedupFirstEncountered, spec.Options.Dedup)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Defaults(t *testing.T) {
	p, err := Parse([]byte("slug: [name]\n"))
	require.NoError(t, err)

	opts, err := p.Options()
	require.NoError(t, err)
	assert.Equal(t, core.SearchOptions{}, opts, "every branch on, max-score dedup")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty document", ""},
		{"no slug", "group: [name]\n"},
		{"blank slug field", "slug: [name, \"\"]\n"},
		{"blank group field", "slug: [name]\ngroup: [\" \"]\n"},
		{"bad operator", "slug: [name]\nranges:\n  - {name: a, field: b, cond: $in}\n"},
		{"range without field", "slug: [name]\nranges:\n  - {name: a, cond: $gt}\n"},
		{"bad dedup", "slug: [name]\ndedup: newest\n"},
		{"all branches off", "slug: [name]\nbranches: {exact: false, mixed: false, fuzzy: false}\n"},
		{"unknown key", "slug: [name]\nslugs: [name]\n"},
		{"not yaml", "slug: [name\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestValidate_WrapsCoreErrors(t *testing.T) {
	p := Default()
	p.Slug = []string{"name"}
	p.Branches = Branches{}

	err := p.Validate()
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.ErrorIs(t, err, core.ErrNoBranches)
}
