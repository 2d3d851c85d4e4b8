package parserpool_test

import (
	"sync"
	"testing"

	"github.com/gnames/herbid/pkg/parserpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	pool := parserpool.NewPool(2)
	require.NotNil(t, pool)
	defer pool.Close()

	res, err := pool.Parse("Acer rubrum L.")
	require.NoError(t, err)
	assert.True(t, res.Parsed)
}

func TestCanonical(t *testing.T) {
	pool := parserpool.NewPool(1)
	defer pool.Close()

	tests := []struct {
		msg, name, res string
	}{
		{"binomial with author", "Acer rubrum L.", "Acer rubrum"},
		{"plain binomial", "Quercus alba", "Quercus alba"},
		{"not a name", "12345", ""},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, pool.Canonical(v.name), v.msg)
	}
}

// TestConcurrentParse verifies the pool is safe for concurrent use.
func TestConcurrentParse(t *testing.T) {
	pool := parserpool.NewPool(4)
	defer pool.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := pool.Parse("Betula pendula Roth")
			assert.NoError(t, err)
			assert.True(t, res.Parsed)
		}()
	}
	wg.Wait()
}
