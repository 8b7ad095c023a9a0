package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Disabled(t *testing.T) {
	c := New(false, 8, 5)
	c.Set("k", []byte("v"))
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestNew_SetGet(t *testing.T) {
	c := New(true, 1, 5)
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", []byte("v"))
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}
