package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabels(t *testing.T) {
	status, err := ParseProductStatus("违规下架")
	require.NoError(t, err)
	assert.Equal(t, ProductStatusTakedown, status)

	level, err := ParseConditionLevel("9成新")
	require.NoError(t, err)
	assert.Equal(t, ConditionNine, level)

	_, err = ParseComplaintStatus("RESOLVED")
	require.ErrorIs(t, err, ErrUnknownLabel)

	_, err = ParseUserRole("admin")
	require.ErrorIs(t, err, ErrUnknownLabel, "labels are case sensitive")
}

func TestRoleFromLabel(t *testing.T) {
	assert.Equal(t, RoleSeller, RoleFromLabel("卖家"))
	assert.Equal(t, RoleSeller, RoleFromLabel(" SELLER "))
	assert.Equal(t, RoleBuyer, RoleFromLabel("买家"))
	assert.Equal(t, RoleBuyer, RoleFromLabel("ADMIN"))
	assert.Equal(t, RoleBuyer, RoleFromLabel("whatever"))
}

func TestUserPredicates(t *testing.T) {
	assert.True(t, User{Role: RoleSeller}.CanPublish())
	assert.True(t, User{Role: RoleAdmin}.CanPublish())
	assert.False(t, User{Role: RoleBuyer}.CanPublish())
	assert.True(t, User{Status: UserStatusBanned}.IsBanned())
}

func TestMatchesCondition(t *testing.T) {
	cases := []struct {
		filter string
		level  ConditionLevel
		want   bool
	}{
		{FilterAll, ConditionNine, true},
		{"", ConditionNine, true},
		{ConditionFilterNew, ConditionNew, true},
		{ConditionFilterNew, ConditionNineNine, false},
		{"new", ConditionNew, true},
		{ConditionFilterNineFiveUp, ConditionNew, true},
		{ConditionFilterNineFiveUp, ConditionNineNine, true},
		{ConditionFilterNineFiveUp, ConditionNineFive, true},
		{ConditionFilterNineFiveUp, ConditionNine, false},
		{"95-and-above", ConditionNine, false},
		{"8成新以上", ConditionNine, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchesCondition(tc.filter, tc.level), "%q / %q", tc.filter, tc.level)
	}
}

func TestMatchesPriceBands(t *testing.T) {
	cases := []struct {
		filter string
		price  float64
		want   bool
	}{
		{PriceFilterUpTo500, 0, true},
		{PriceFilterUpTo500, 500, true},
		{PriceFilterUpTo500, 500.01, false},
		{PriceFilter500To1000, 500, false},
		{PriceFilter500To1000, 1000, true},
		{PriceFilter500To1000, 1000.01, false},
		{PriceFilterAbove1000, 1000, false},
		{PriceFilterAbove1000, 1000.01, true},
		{"0-500", 20, true},
		{"1000+", 20, false},
		{"ALL", 1e9, true},
		{"2000元以上", 1, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchesPrice(tc.filter, tc.price), "%q / %v", tc.filter, tc.price)
	}
}

func TestComplaintCloneIsDeep(t *testing.T) {
	c := Complaint{ProductID: IntPtr(1), OrderID: IntPtr(2)}
	clone := c.Clone()
	*clone.ProductID = 10
	*clone.OrderID = 20
	assert.Equal(t, 1, *c.ProductID)
	assert.Equal(t, 2, *c.OrderID)
}
