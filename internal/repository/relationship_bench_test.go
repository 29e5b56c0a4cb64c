package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/pkg/database"
)

func BenchmarkFollowWrite_And_FanRedundancy(b *testing.B) {
	db := database.NewTestDB(b)
	followRepo := NewFollowRepository(db)
	fanRepo := NewFanRepository(db)
	ctx := context.Background()

	// 预创建部分用户
	users := make([]model.User, 1000)
	for i := range users {
		users[i] = model.User{ID: fmt.Sprintf("u%04d", i), Username: fmt.Sprintf("u%04d", i)}
	}
	if err := db.CreateInBatches(&users, 200).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if from == to {
			continue
		}
		if created, _ := followRepo.Create(ctx, from, to); created {
			_ = fanRepo.Create(ctx, to, from)
		}
	}
}

func BenchmarkQueryFansAndMessages(b *testing.B) {
	db := database.NewTestDB(b)
	followRepo := NewFollowRepository(db)
	fanRepo := NewFanRepository(db)
	msgRepo := NewMessageRepository(db)
	ctx := context.Background()

	// 构造：u0 有 N 个粉丝，同时 u0 也关注 N 个用户，并与每人有一条私信
	const N = 2000
	_ = db.Create(&model.User{ID: "u0", Username: "u0"}).Error
	for i := 1; i <= N; i++ {
		uid := fmt.Sprintf("u%d", i)
		_ = db.Create(&model.User{ID: uid, Username: uid}).Error
		_, _ = followRepo.Create(ctx, uid, "u0")
		_ = fanRepo.Create(ctx, "u0", uid)
		_, _ = followRepo.Create(ctx, "u0", uid)
		_ = msgRepo.Create(ctx, &model.Message{
			ID:             fmt.Sprintf("m%d", i),
			ConversationID: "u0:" + uid,
			SenderID:       "u0",
			ReceiverID:     uid,
			Text:           "hi",
			Type:           model.MessageTypeText,
		})
	}

	b.ResetTimer()
	b.Run("ListFanIDs", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = fanRepo.ListFanIDs(ctx, "u0")
		}
	})

	b.Run("ListFollowings", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowings(ctx, "u0", 0, 50)
		}
	})

	b.Run("LatestPerConversation", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = msgRepo.LatestPerConversation(ctx, "u0")
		}
	})
}
