package symbols

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndResolve(t *testing.T) {
	reg := NewRegistry()

	reg.Register(10, "com.example.Checkout")
	reg.Register(11, "process")

	name, ok := reg.Name(10)
	require.True(t, ok)
	assert.Equal(t, "com.example.Checkout", name)
	assert.Equal(t, "process", reg.Resolve(11))
	assert.Equal(t, 2, reg.Len())
}

func TestResolveUnknownIDFallsBack(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, "#42", reg.Resolve(42))
}

func TestFirstBindingWins(t *testing.T) {
	reg := NewRegistry()

	reg.Register(10, "first")
	reg.Register(10, "second")

	assert.Equal(t, "first", reg.Resolve(10))
}

func TestInternIsStable(t *testing.T) {
	reg := NewRegistry()

	id := reg.Intern("com.example.Foo")
	assert.Equal(t, id, reg.Intern("com.example.Foo"))
	assert.NotEqual(t, id, reg.Intern("com.example.Bar"))
	assert.Equal(t, "com.example.Foo", reg.Resolve(id))
}

func TestInternAvoidsRegisteredIDs(t *testing.T) {
	reg := NewRegistry()

	reg.Register(100, "preassigned")
	id := reg.Intern("fresh")

	assert.Greater(t, id, int32(100))
}

func TestSnapshotIsACopy(t *testing.T) {
	reg := NewRegistry()
	reg.Register(1, "a")

	snap := reg.Snapshot()
	snap[2] = "injected"

	_, ok := reg.Name(2)
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Intern(fmt.Sprintf("sym-%d", j))
				reg.Resolve(int32(j))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, reg.Len())
}
