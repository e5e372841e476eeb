package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCollection_PreservesKeyOrder(t *testing.T) {
	src := `
zeta:
  name: Z
alpha:
  name: A
mid:
  name: M
`
	var c Collection[Instructor]
	require.NoError(t, yaml.Unmarshal([]byte(src), &c))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, c.Keys())
	assert.True(t, c.Present())

	inst, ok := c.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", inst.ID, "id is filled from the key")
	assert.Equal(t, "A", inst.Name)

	out, err := yaml.Marshal(c)
	require.NoError(t, err)

	var again Collection[Instructor]
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, c.Keys(), again.Keys())
}

func TestCollection_RejectsDuplicateKeys(t *testing.T) {
	src := `
a:
  name: first
a:
  name: second
`
	var c Collection[Module]
	err := yaml.Unmarshal([]byte(src), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestCollection_RejectsNonMapping(t *testing.T) {
	var c Collection[Module]
	err := yaml.Unmarshal([]byte("- a\n- b\n"), &c)
	require.Error(t, err)
}

func TestCollection_PutDelete(t *testing.T) {
	c := NewCollection[Module]()
	c.Put("m1", &Module{Name: "one"})
	c.Put("m2", &Module{Name: "two"})
	c.Put("m1", &Module{Name: "uno"})

	assert.Equal(t, []string{"m1", "m2"}, c.Keys(), "replacing keeps position")
	m, _ := c.Get("m1")
	assert.Equal(t, "uno", m.Name)
	assert.Equal(t, "m1", m.ID)

	assert.True(t, c.Delete("m1"))
	assert.False(t, c.Delete("m1"))
	assert.Equal(t, []string{"m2"}, c.Keys())
	assert.Equal(t, 1, c.Len())
}

func TestCollection_MarshalJSONOrdered(t *testing.T) {
	c := NewCollection[Instructor]()
	c.Put("b", &Instructor{Name: "B"})
	c.Put("a", &Instructor{Name: "A"})

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"b":.*,"a":.*\}$`, string(data))
}

func TestDocument_MissingCollectionNotPresent(t *testing.T) {
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte("instructors: {}\n"), &doc))

	assert.True(t, doc.Instructors.Present())
	assert.False(t, doc.Modules.Present())
}

func TestDocument_CloneIsDeep(t *testing.T) {
	doc := NewDocument()
	doc.Instructors.Put("p1", &Instructor{Email: "a@x.edu", Modules: []string{"m1"}})
	doc.Modules.Put("m1", &Module{
		Name:     "M",
		Software: []SoftwareRequirement{{Name: "Go", OSSupported: OSList{"Linux"}}},
	})

	clone := doc.Clone()
	ci, _ := clone.Instructors.Get("p1")
	ci.Modules[0] = "changed"
	cm, _ := clone.Modules.Get("m1")
	cm.Software[0].OSSupported[0] = "Windows"
	clone.Modules.Delete("m1")

	oi, _ := doc.Instructors.Get("p1")
	assert.Equal(t, "m1", oi.Modules[0])
	om, ok := doc.Modules.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "Linux", om.Software[0].OSSupported[0])
}

func TestSoftwareRequirement_CloneKeepsNil(t *testing.T) {
	sw := SoftwareRequirement{Name: "x"}
	assert.Nil(t, sw.Clone().OSSupported)

	sw.OSSupported = OSList{}
	c := sw.Clone()
	assert.NotNil(t, c.OSSupported)
	assert.Empty(t, c.OSSupported)
}

func TestModule_EffectiveOS(t *testing.T) {
	m := &Module{OSRequired: []OSRequirement{{Name: "Windows"}, {Name: "macOS", Note: "12+"}}}

	inherited := SoftwareRequirement{Name: "a"}
	assert.Equal(t, []string{"Windows", "macOS"}, m.EffectiveOS(&inherited))

	explicit := SoftwareRequirement{Name: "b", OSSupported: OSList{"Linux"}}
	assert.Equal(t, []string{"Linux"}, m.EffectiveOS(&explicit))

	assert.Equal(t, "macOS (12+)", m.OSRequired[1].String())
	assert.Equal(t, "Windows", m.OSRequired[0].String())
}

func TestOSList_ExplicitEmptySurvivesYAML(t *testing.T) {
	mod := Module{Software: []SoftwareRequirement{
		{Name: "inherit"},
		{Name: "none", OSSupported: OSList{}},
	}}

	data, err := yaml.Marshal(mod)
	require.NoError(t, err)

	var back Module
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Nil(t, back.Software[0].OSSupported)
	assert.NotNil(t, back.Software[1].OSSupported)
	assert.Empty(t, back.Software[1].OSSupported)
}
