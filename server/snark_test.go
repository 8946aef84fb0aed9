package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickRemarkIsDeterministicForSeed(t *testing.T) {
	first := PickRemark(rand.New(rand.NewSource(42)))
	second := PickRemark(rand.New(rand.NewSource(42)))

	assert.Equal(t, first, second)
}

func TestPickRemarkReturnsPhraseFromSet(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		assert.Contains(t, snarkyRemarks, PickRemark(rng))
	}
}
