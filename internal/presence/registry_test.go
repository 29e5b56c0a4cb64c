package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubConn struct{ id string }

func (c *stubConn) ID() string                     { return c.id }
func (c *stubConn) Send(string, interface{}) error { return nil }

func TestJoinMultipleDevices(t *testing.T) {
	r := NewMemoryRegistry()
	phone, laptop := &stubConn{"phone"}, &stubConn{"laptop"}

	r.Join("u1", phone)
	r.Join("u1", laptop)
	r.Join("u1", phone)

	assert.Len(t, r.ConnectionsFor("u1"), 2)
	assert.True(t, r.Online("u1"))

	r.Leave(phone)
	conns := r.ConnectionsFor("u1")
	assert.Len(t, conns, 1)
	assert.Equal(t, "laptop", conns[0].ID())

	r.Leave(laptop)
	assert.Empty(t, r.ConnectionsFor("u1"))
	assert.False(t, r.Online("u1"))
}

func TestJoinMovesConnectionBetweenUsers(t *testing.T) {
	r := NewMemoryRegistry()
	c := &stubConn{"c1"}

	r.Join("u1", c)
	r.Join("u2", c)

	assert.Empty(t, r.ConnectionsFor("u1"))
	assert.Len(t, r.ConnectionsFor("u2"), 1)
}

func TestLeaveWithoutJoin(t *testing.T) {
	r := NewMemoryRegistry()
	assert.NotPanics(t, func() { r.Leave(&stubConn{"ghost"}) })
	assert.Empty(t, r.ConnectionsFor("anyone"))
}

func TestConcurrentJoinLeave(t *testing.T) {
	r := NewMemoryRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &stubConn{fmt.Sprintf("c%d", i)}
			r.Join("u1", c)
			_ = r.ConnectionsFor("u1")
			if i%2 == 0 {
				r.Leave(c)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.ConnectionsFor("u1"), 25)
}
