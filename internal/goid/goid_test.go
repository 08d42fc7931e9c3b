package goid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIsStableWithinGoroutine(t *testing.T) {
	id := Get()

	assert.NotZero(t, id)
	assert.Equal(t, id, Get())
}

func TestGetDiffersAcrossGoroutines(t *testing.T) {
	id := Get()

	other := make(chan uint64)
	go func() {
		other <- Get()
	}()

	assert.NotEqual(t, id, <-other)
}
