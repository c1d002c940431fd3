package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageLog_AddAndList(t *testing.T) {
	log := NewMessageLog()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return fixed }

	log.Add("first")
	log.Add("second")

	msgs, err := log.List(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, fixed, msgs[0].CreatedAt)
	assert.Equal(t, int64(2), msgs[1].ID)
	assert.Equal(t, []string{"first", "second"}, log.Texts())
}

func TestMessageLog_ListReturnsCopy(t *testing.T) {
	log := NewMessageLog()
	log.Add("original")

	msgs, err := log.List(context.Background())
	require.NoError(t, err)
	msgs[0].Text = "mutated"

	assert.Equal(t, []string{"original"}, log.Texts())
}

func TestMessageLog_Clear(t *testing.T) {
	log := NewMessageLog()
	log.Add("a")
	require.NoError(t, log.Clear(context.Background()))
	log.Add("b")

	msgs, err := log.List(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "b", msgs[0].Text)
	assert.Equal(t, int64(2), msgs[0].ID, "ids are not reused after clear")
}

func TestMessageLog_ConcurrentAdd(t *testing.T) {
	log := NewMessageLog()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Add(fmt.Sprintf("msg %d", i))
		}()
	}
	wg.Wait()

	assert.Len(t, log.Texts(), 50)
}
