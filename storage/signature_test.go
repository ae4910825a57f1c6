package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshua-maros/hecs/storage"
	"github.com/joshua-maros/hecs/types"
)

func TestSignatureIsOrderIndependent(t *testing.T) {
	a := storage.NewSignature(3, 1, 2)
	b := storage.NewSignature(2, 3, 1)
	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Equals(b))
}

func TestSignatureDedupes(t *testing.T) {
	s := storage.NewSignature(1, 1, 2)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "1:2", s.Key())
}

func TestSignatureSetOperations(t *testing.T) {
	s := storage.NewSignature(1, 2)

	extended := s.With(3)
	assert.True(t, extended.Equals(storage.NewSignature(1, 2, 3)))
	assert.True(t, s.Equals(storage.NewSignature(1, 2)), "With must not mutate the receiver")

	shrunk := extended.Without(1)
	assert.True(t, shrunk.Equals(storage.NewSignature(2, 3)))

	assert.True(t, extended.ContainsAll([]types.ComponentID{1, 3}))
	assert.False(t, extended.ContainsAll([]types.ComponentID{1, 4}))
	assert.True(t, extended.DisjointWith([]types.ComponentID{4, 5}))
	assert.False(t, extended.DisjointWith([]types.ComponentID{4, 2}))
}
