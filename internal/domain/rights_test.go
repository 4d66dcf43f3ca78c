package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRights_Has(t *testing.T) {
	assert.True(t, RightsComplete.Has(RightRead))
	assert.True(t, RightsComplete.Has(RightWrite))
	assert.True(t, RightRead.Has(RightRead))
	assert.False(t, RightRead.Has(RightWrite))
	assert.False(t, RightRead.Has(0))
}

func TestRights_String(t *testing.T) {
	assert.Equal(t, "none", Rights(0).String())
	assert.Equal(t, "read", RightRead.String())
	assert.Equal(t, "write", RightWrite.String())
	assert.Equal(t, "read+write", RightsComplete.String())
}

func TestIDSet_AddIsIdempotent(t *testing.T) {
	var s IDSet

	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Add("b"))

	assert.Equal(t, IDSet{"a", "b"}, s)
}

func TestIDSet_Remove(t *testing.T) {
	s := IDSet{"a", "b", "c"}

	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.Equal(t, IDSet{"a", "c"}, s)
}

func TestIDSet_MarshalNil(t *testing.T) {
	data, err := json.Marshal(struct {
		IDs IDSet `json:"ids"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":[]}`, string(data))
}

func TestUser_GrantAndRevoke(t *testing.T) {
	u := &User{Username: "alice"}

	assert.True(t, u.Apply(GrantModelRights{ModelID: "m1", Rights: RightsComplete}))
	assert.Equal(t, RightsComplete, u.RightsOn("m1"))

	// Second grant changes nothing.
	assert.False(t, u.Apply(GrantModelRights{ModelID: "m1", Rights: RightsComplete}))

	assert.True(t, u.Apply(RevokeModelRights{ModelID: "m1", Rights: RightWrite}))
	assert.Equal(t, RightRead, u.RightsOn("m1"))
	assert.Empty(t, u.WriteModels)
	assert.Equal(t, IDSet{"m1"}, u.ReadModels)
}

func TestUser_RevokeReadLeavesWrite(t *testing.T) {
	u := &User{}
	u.Apply(GrantModelRights{ModelID: "m1", Rights: RightsComplete})

	u.Apply(RevokeModelRights{ModelID: "m1", Rights: RightRead})

	assert.Equal(t, RightWrite, u.RightsOn("m1"))
}

func TestUser_ApplyTouchesOnlyOnChange(t *testing.T) {
	u := &User{Email: "a@example.com"}

	assert.False(t, u.Apply(SetEmail{Email: "a@example.com"}))
	assert.True(t, u.UpdatedAt.IsZero())

	assert.True(t, u.Apply(SetEmail{Email: "b@example.com"}, SetPasswordHash{Hash: "x"}))
	assert.False(t, u.UpdatedAt.IsZero())
	assert.Equal(t, "x", u.PasswordHash)
}

func TestModel_GrantAndRevoke(t *testing.T) {
	m := &Model{Name: "teapot"}

	m.Apply(GrantUserRights{UserID: "u1", Rights: RightRead})
	assert.Equal(t, RightRead, m.RightsOf("u1"))
	assert.True(t, m.CanRead("u1"))
	assert.False(t, m.CanWrite("u1"))

	m.Apply(GrantUserRights{UserID: "u1", Rights: RightsComplete})
	assert.True(t, m.CanWrite("u1"))

	m.Apply(RevokeUserRights{UserID: "u1", Rights: RightsComplete})
	assert.Equal(t, Rights(0), m.RightsOf("u1"))
	assert.False(t, m.CanRead("u1"))
}

func TestModel_PublicFlags(t *testing.T) {
	m := &Model{}
	m.Apply(SetPublicRead{Public: true})

	assert.True(t, m.CanRead("anyone"))
	assert.False(t, m.CanWrite("anyone"))

	m.Apply(SetPublicWrite{Public: true})
	assert.True(t, m.CanWrite("anyone"))
}

func TestModel_SetTagsNormalizes(t *testing.T) {
	m := &Model{}

	changed := m.Apply(SetTags{Tags: []string{"Low Poly", "low-poly", "  ", "Café"}})

	assert.True(t, changed)
	assert.Equal(t, []string{"low-poly", "cafe"}, m.Tags)
	assert.False(t, m.Apply(SetTags{Tags: []string{"low poly", "CAFE"}}))
}
