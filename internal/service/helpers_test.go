package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/im-delivery/internal/cache"
	"github.com/d60-Lab/im-delivery/internal/catalog"
	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/presence"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/pkg/database"
)

type sentEvent struct {
	event   string
	payload interface{}
}

type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []sentEvent
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, sentEvent{event: event, payload: payload})
	return nil
}

func (c *fakeConn) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.event
	}
	return out
}

func (c *fakeConn) count(event string) int {
	n := 0
	for _, name := range c.names() {
		if name == event {
			n++
		}
	}
	return n
}

// stepClock 每次调用前进 1ms，保证创建时间严格递增
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type testEnv struct {
	db            *gorm.DB
	registry      presence.Registry
	bus           *delivery.Bus
	store         *MessageStore
	notifications NotificationService
	messages      MessageService
	follows       repository.FollowRepository
	fans          repository.FanRepository
	users         repository.UserRepository
	directory     *cache.Directory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := database.NewTestDB(t)
	require.NoError(t, db.Create(&[]model.User{
		{ID: "a1", Username: "alice", Name: "Alice"},
		{ID: "b1", Username: "bob", Name: "Bob"},
		{ID: "c1", Username: "carol", Name: "Carol"},
		{ID: "d1", Username: "dave"},
	}).Error)
	require.NoError(t, db.Create(&model.Track{ID: "t1", Title: "Night Drive", Price: 1.99, CreatorID: "c1"}).Error)
	require.NoError(t, db.Create(&model.Book{ID: "bk1", Title: "Go in Practice", Price: 12}).Error)

	clock := newStepClock()
	registry := presence.NewMemoryRegistry()
	bus := delivery.NewBus(registry)

	msgRepo := repository.NewMessageRepository(db)
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	fans := repository.NewFanRepository(db)
	directory := cache.NewDirectory(nil, fans, users, 0)

	store := NewMessageStore(msgRepo, users, catalog.NewResolver(db))
	store.now = clock.Now
	notifications := NewNotificationService(repository.NewNotificationRepository(db), bus)
	notifications.(*notificationService).now = clock.Now

	return &testEnv{
		db:            db,
		registry:      registry,
		bus:           bus,
		store:         store,
		notifications: notifications,
		messages:      NewMessageService(store, msgRepo, follows, directory, registry, bus, notifications),
		follows:       follows,
		fans:          fans,
		users:         users,
		directory:     directory,
	}
}

func (e *testEnv) connect(userID, connID string) *fakeConn {
	c := &fakeConn{id: connID}
	e.registry.Join(userID, c)
	return c
}

func (e *testEnv) countRows(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}
