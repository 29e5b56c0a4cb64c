package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/pkg/database"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func msg(id, conv, from, to string, at time.Duration, clientID *string) *model.Message {
	return &model.Message{
		ID:             id,
		ConversationID: conv,
		SenderID:       from,
		ReceiverID:     to,
		Text:           "text " + id,
		Type:           model.MessageTypeText,
		ClientID:       clientID,
		CreatedAt:      base.Add(at),
	}
}

func TestMessageCreateDuplicateClientID(t *testing.T) {
	db := database.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Create(&model.User{ID: "a1", Username: "alice"}).Error)

	require.NoError(t, repo.Create(ctx, msg("m1", "a1:b1", "a1", "b1", 0, strPtr("x"))))
	err := repo.Create(ctx, msg("m2", "a1:b1", "a1", "b1", time.Second, strPtr("x")))
	assert.ErrorIs(t, err, ErrDuplicate)

	// 不带 clientId 的消息不受唯一键约束
	require.NoError(t, repo.Create(ctx, msg("m3", "a1:b1", "a1", "b1", 2*time.Second, nil)))
	require.NoError(t, repo.Create(ctx, msg("m4", "a1:b1", "a1", "b1", 3*time.Second, nil)))

	found, err := repo.FindByClientID(ctx, "a1:b1", "a1", "x")
	require.NoError(t, err)
	assert.Equal(t, "m1", found.ID)
	require.NotNil(t, found.Sender)
	assert.Equal(t, "alice", found.Sender.Username)

	_, err = repo.FindByClientID(ctx, "a1:b1", "b1", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListConversationWindow(t *testing.T) {
	db := database.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	for i, id := range []string{"m1", "m2", "m3", "m4", "m5"} {
		require.NoError(t, repo.Create(ctx, msg(id, "a1:b1", "a1", "b1", time.Duration(i)*time.Minute, nil)))
	}
	require.NoError(t, repo.Create(ctx, msg("x1", "a1:c1", "a1", "c1", time.Hour, nil)))

	res, err := repo.ListConversation(ctx, "a1:b1", time.Time{}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m4", "m5"}, ids(res))

	res, err = repo.ListConversation(ctx, "a1:b1", base.Add(2*time.Minute), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids(res))
}

func TestLatestPerConversation(t *testing.T) {
	db := database.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, msg("m1", "a1:b1", "a1", "b1", 0, nil)))
	require.NoError(t, repo.Create(ctx, msg("m2", "a1:b1", "b1", "a1", time.Minute, nil)))
	require.NoError(t, repo.Create(ctx, msg("m3", "a1:c1", "c1", "a1", 2*time.Minute, nil)))
	require.NoError(t, repo.Create(ctx, msg("m4", "b1:c1", "b1", "c1", 3*time.Minute, nil)))

	res, err := repo.LatestPerConversation(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m2"}, ids(res))

	res, err = repo.LatestPerConversation(ctx, "zz")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func ids(ms []*model.Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}
