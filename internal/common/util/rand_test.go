package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewThreadsafeRand_SeedIsReproducible(t *testing.T) {
	a := NewThreadsafeRand(7)
	b := NewThreadsafeRand(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestNewThreadsafeRand_ConcurrentUse(t *testing.T) {
	r := NewThreadsafeRand(1)
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Int63n(100)
			}
		}()
	}
	wg.Wait()
}
