package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestTierForCost(t *testing.T) {
	require.Equal(t, TierBronze, TierForCost(0))
	require.Equal(t, TierBronze, TierForCost(499))
	require.Equal(t, TierSilver, TierForCost(500))
	require.Equal(t, TierSilver, TierForCost(1499))
	require.Equal(t, TierGold, TierForCost(1500))
	require.Equal(t, TierGold, TierForCost(2999))
	require.Equal(t, TierPlatinum, TierForCost(3000))
	require.Equal(t, TierPlatinum, TierForCost(10000))
}

func TestRewardVisibleTo(t *testing.T) {
	everyone := Reward{}
	require.True(t, everyone.VisibleTo(1))
	require.True(t, everyone.VisibleTo(99))

	restricted := Reward{AssignedStudentIDs: datatypes.NewJSONSlice([]uint{2, 5})}
	require.True(t, restricted.VisibleTo(2))
	require.True(t, restricted.VisibleTo(5))
	require.False(t, restricted.VisibleTo(1))
}

func TestStudentAllocations(t *testing.T) {
	empty := Student{}
	require.Equal(t, 0, empty.AllocationFor(3))
	require.Equal(t, 0, empty.TotalAllocated())

	student := Student{
		RewardAllocations: datatypes.NewJSONType(map[uint]int{3: 40, 7: 10}),
	}
	require.Equal(t, 40, student.AllocationFor(3))
	require.Equal(t, 0, student.AllocationFor(4))
	require.Equal(t, 50, student.TotalAllocated())
}
