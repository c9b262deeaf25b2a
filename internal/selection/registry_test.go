package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	t.Parallel()
	registry := NewDefaultRegistry()

	algo, err := registry.Get(SequentialID)
	require.NoError(t, err)
	assert.Equal(t, SequentialID, algo.ID())

	algo, err = registry.Get(FaustID)
	require.NoError(t, err)
	assert.Equal(t, FaustID, algo.ID())
}

func TestRegistryGetUnknownID(t *testing.T) {
	t.Parallel()
	registry := NewDefaultRegistry()

	algo, err := registry.Get("round-robin")
	assert.Nil(t, algo)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	assert.Contains(t, err.Error(), "round-robin")
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()

	require.NoError(t, registry.Register(NewFaust()))
	err := registry.Register(NewFaust())
	assert.ErrorIs(t, err, ErrAlgorithmAlreadyRegistered)
}

func TestDefaultAlgorithmIDIsRegistered(t *testing.T) {
	t.Parallel()
	registry := NewDefaultRegistry()
	_, err := registry.Get(DefaultAlgorithmID)
	assert.NoError(t, err)
}
