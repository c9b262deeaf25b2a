package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	t.Parallel()
	registry := NewDefaultRegistry()

	strategy, err := registry.Get(FSRSLiteID)
	require.NoError(t, err)
	assert.Equal(t, FSRSLiteID, strategy.ID())

	strategy, err = registry.Get(SM2ID)
	require.NoError(t, err)
	assert.Equal(t, SM2ID, strategy.ID())
}

func TestRegistryGetUnknownID(t *testing.T) {
	t.Parallel()
	registry := NewDefaultRegistry()

	strategy, err := registry.Get("anki-killer")
	assert.Nil(t, strategy)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Contains(t, err.Error(), "anki-killer")
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()

	require.NoError(t, registry.Register(NewFSRSLite()))
	err := registry.Register(NewFSRSLite())
	assert.ErrorIs(t, err, ErrStrategyAlreadyRegistered)
}

func TestRegistryIDs(t *testing.T) {
	t.Parallel()
	registry := NewDefaultRegistry()
	assert.ElementsMatch(t, []string{FSRSLiteID, SM2ID}, registry.IDs())
}

func TestDefaultStrategyIDIsRegistered(t *testing.T) {
	t.Parallel()
	registry := NewDefaultRegistry()
	_, err := registry.Get(DefaultStrategyID)
	assert.NoError(t, err)
}
