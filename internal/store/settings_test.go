package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	db := NewTestStore(t)

	value, err := db.GetSetting("alice", SettingLongTermDays)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, db.SetSetting("alice", SettingLongTermDays, "50"))
	require.NoError(t, db.SetSetting("alice", SettingLongTermDays, "56"))
	require.NoError(t, db.SetSetting("bob", SettingLongTermDays, "30"))

	value, err = db.GetSetting("alice", SettingLongTermDays)
	require.NoError(t, err)
	assert.Equal(t, "56", value)

	all, err := db.ListSettings("bob")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{SettingLongTermDays: "30"}, all)
}

func TestAthleteSettings(t *testing.T) {
	db := NewTestStore(t)
	s := db.Settings("alice")

	assert.Zero(t, s.LongTermDays())
	assert.Zero(t, s.ShortTermDays())
	assert.False(t, s.ShowBalanceToday())

	require.NoError(t, db.SetSetting("alice", SettingLongTermDays, "28"))
	require.NoError(t, db.SetSetting("alice", SettingShortTermDays, "5"))
	require.NoError(t, db.SetSetting("alice", SettingBalanceToday, "true"))
	assert.Equal(t, 28, s.LongTermDays())
	assert.Equal(t, 5, s.ShortTermDays())
	assert.True(t, s.ShowBalanceToday())

	require.NoError(t, db.SetSetting("alice", SettingShortTermDays, "weekly"))
	require.NoError(t, db.SetSetting("alice", SettingBalanceToday, "maybe"))
	assert.Zero(t, s.ShortTermDays())
	assert.False(t, s.ShowBalanceToday())
}
