package countstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemCountStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetDayCount(ctx, "create/userInput", "user-1")
	assert.NoError(err)
	assert.Equal(0, c)

	assert.NoError(cs.Increment(ctx, "create/userInput", "user-1"))
	assert.NoError(cs.Increment(ctx, "create/userInput", "user-1"))

	c, err = cs.GetDayCount(ctx, "create/userInput", "user-1")
	assert.NoError(err)
	assert.Equal(2, c)

	// separate actors and sources get separate buckets
	c, err = cs.GetDayCount(ctx, "create/userInput", "user-2")
	assert.NoError(err)
	assert.Equal(0, c)
	c, err = cs.GetDayCount(ctx, "create/aiResponse", "user-1")
	assert.NoError(err)
	assert.Equal(0, c)
}

func TestMemCountStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	// interleave increments and reads from several goroutines; run with `-race`
	var wg sync.WaitGroup
	fnInc := func(name, val string, times int) {
		defer wg.Done()
		for i := 0; i < times; i++ {
			assert.NoError(cs.Increment(ctx, name, val))
			time.Sleep(time.Nanosecond)
		}
	}
	fnRead := func(name, val string, times int) {
		for i := 0; i < times; i++ {
			_, err := cs.GetDayCount(ctx, name, val)
			assert.NoError(err)
			time.Sleep(time.Nanosecond)
		}
	}
	wg.Add(4)
	go fnInc("create/userInput", "user-1", 10)
	go fnInc("create/userInput", "user-1", 10)
	go fnRead("create/userInput", "user-1", 10)
	go fnInc("create/aiResponse", "user-2", 6)
	go fnInc("create/aiResponse", "user-2", 6)
	go fnRead("create/aiResponse", "user-2", 6)
	wg.Wait()

	c, err := cs.GetDayCount(ctx, "create/userInput", "user-1")
	assert.NoError(err)
	assert.Equal(20, c)
	c, err = cs.GetDayCount(ctx, "create/aiResponse", "user-2")
	assert.NoError(err)
	assert.Equal(12, c)
}
