package signal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hireside/proctor-gateway/internal/model"
)

func TestStream_FanOut(t *testing.T) {
	s := NewStream()

	var a, b []model.ViolationKind
	s.Subscribe(func(k model.ViolationKind) { a = append(a, k) })
	s.Subscribe(func(k model.ViolationKind) { b = append(b, k) })

	s.Emit(model.ViolationFocusLost)
	s.Emit(model.ViolationVisibilityLost)

	want := []model.ViolationKind{model.ViolationFocusLost, model.ViolationVisibilityLost}
	assert.Equal(t, want, a)
	assert.Equal(t, want, b)
}

func TestStream_Cancel(t *testing.T) {
	s := NewStream()

	var got []model.ViolationKind
	cancel := s.Subscribe(func(k model.ViolationKind) { got = append(got, k) })

	s.Emit(model.ViolationFocusLost)
	cancel()
	s.Emit(model.ViolationFocusLost)

	assert.Len(t, got, 1)

	// Cancel twice is harmless.
	cancel()
}

func TestStream_UnsubscribeFromHandler(t *testing.T) {
	s := NewStream()

	var calls int
	var cancel func()
	cancel = s.Subscribe(func(model.ViolationKind) {
		calls++
		cancel()
	})

	s.Emit(model.ViolationFocusLost)
	s.Emit(model.ViolationFocusLost)

	assert.Equal(t, 1, calls)
}

func TestStream_ConcurrentEmit(t *testing.T) {
	s := NewStream()

	var mu sync.Mutex
	var calls int
	s.Subscribe(func(model.ViolationKind) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Emit(model.ViolationForbiddenInput)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 400, calls)
}
