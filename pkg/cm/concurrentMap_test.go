package cm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMissingKey(t *testing.T) {
	var m ConcurrentMap[int, string]
	v, ok := m.Get(1)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSetGetDelete(t *testing.T) {
	var m ConcurrentMap[int, string]
	m.Set(1, "a")
	v, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	m.Set(1, "b")
	v, _ = m.Get(1)
	assert.Equal(t, "b", v)

	m.Delete(1)
	_, ok = m.Get(1)
	assert.False(t, ok)
	m.Delete(1)
}

func TestConcurrentSet(t *testing.T) {
	var m ConcurrentMap[int, int]
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Set(i, i*i)
		}(i)
	}
	wg.Wait()
	for i := 0; i < 100; i++ {
		v, ok := m.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i*i, v)
	}
}
