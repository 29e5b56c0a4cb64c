// sharebench 压测“分享给粉丝”：N 个粉丝经复制器落到 fans 表后，测量一次分享的扇出耗时与推送量。
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/im-delivery/config"
	"github.com/d60-Lab/im-delivery/internal/cache"
	"github.com/d60-Lab/im-delivery/internal/catalog"
	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/message"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/presence"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/internal/service"
	"github.com/d60-Lab/im-delivery/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// countingConn 只计数，不做网络写
type countingConn struct {
	id string
	n  *atomic.Int64
}

func (c countingConn) ID() string { return c.id }

func (c countingConn) Send(string, interface{}) error {
	c.n.Add(1)
	return nil
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	N := envInt("N", 2000)
	ROUNDS := envInt("ROUNDS", 3)
	ONLINE := envInt("ONLINE_PCT", 30)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	fans := repository.NewFanRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	directory := cache.NewDirectory(rdb, fans, users, cfg.Redis.TTL)

	registry := presence.NewMemoryRegistry()
	bus := delivery.NewBus(registry)
	replicator := service.NewFanReplicator(fans, directory, N+1)
	stop := replicator.Start(cfg.Replicator.Workers)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), bus)
	store := service.NewMessageStore(msgRepo, users, catalog.NewResolver(db))
	messages := service.NewMessageService(store, msgRepo, follows, directory, registry, bus, notifications)
	relations := service.NewRelationshipService(follows, fans, users, replicator, nil)

	// seed: u0 为大 V，其余用户关注 u0；ONLINE_PCT% 的粉丝在线
	celeb := model.User{ID: "u0", Username: "u0", Name: "Celebrity"}
	_ = db.Where("id = ?", celeb.ID).FirstOrCreate(&celeb).Error
	var pushed atomic.Int64
	seed := make([]model.User, N)
	for i := range seed {
		id := uuid.New().String()
		seed[i] = model.User{ID: id, Username: "u" + id[:8]}
	}
	_ = db.CreateInBatches(&seed, 1000).Error
	for i, u := range seed {
		_ = relations.Follow(ctx, u.ID, celeb.ID)
		if i*100 < N*ONLINE {
			registry.Join(u.ID, countingConn{id: "c-" + u.ID, n: &pushed})
		}
	}

	// 等待复制落地
	repRecs := make([]time.Duration, 0, N)
	deadline := time.After(time.Minute)
collect:
	for len(repRecs) < N {
		select {
		case d := <-replicator.Metrics():
			repRecs = append(repRecs, d)
		case <-deadline:
			break collect
		}
	}
	_ = stop(ctx)

	durs := make([]time.Duration, 0, ROUNDS)
	sent := 0
	for r := 0; r < ROUNDS; r++ {
		in := &message.Incoming{Text: fmt.Sprintf("round %d", r), ClientID: fmt.Sprintf("share-%d", r)}
		t0 := time.Now()
		sent = must(messages.ShareToFollowers(ctx, celeb.ID, in))
		durs = append(durs, time.Since(t0))
	}

	fmt.Printf("N=%d, ROUNDS=%d, ONLINE=%d%%, redis=%v\n", N, ROUNDS, ONLINE, rdb != nil)
	fmt.Printf("Replication landing: samples=%d, p50=%v, p95=%v, p99=%v, queue=%d\n",
		len(repRecs), pct(repRecs, 0.50), pct(repRecs, 0.95), pct(repRecs, 0.99), replicator.QueueLen())
	fmt.Printf("Share fan-out: sent=%d/round, p50=%v, max=%v, per follower=%v\n",
		sent, pct(durs, 0.50), pct(durs, 1), pct(durs, 0.50)/time.Duration(max(sent, 1)))
	fmt.Printf("Realtime events pushed: %d\n", pushed.Load())
}
