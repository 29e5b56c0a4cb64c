package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/im-delivery/internal/model"
)

type MessageRepository interface {
	// Create 命中 (conversation_id, sender_id, client_id) 唯一键时返回 ErrDuplicate
	Create(ctx context.Context, m *model.Message) error
	FindByClientID(ctx context.Context, conversationID, senderID, clientID string) (*model.Message, error)
	// ListConversation 按创建时间升序返回 before 之前最近的 limit 条
	ListConversation(ctx context.Context, conversationID string, before time.Time, limit int) ([]*model.Message, error)
	// LatestPerConversation 用户参与的每个会话的最后一条消息
	LatestPerConversation(ctx context.Context, userID string) ([]*model.Message, error)
}

type messageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) MessageRepository { return &messageRepository{db: db} }

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	err := r.db.WithContext(ctx).Omit("Sender").Create(m).Error
	if isDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (r *messageRepository) FindByClientID(ctx context.Context, conversationID, senderID, clientID string) (*model.Message, error) {
	var m model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ? AND sender_id = ? AND client_id = ?", conversationID, senderID, clientID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find message by client id: %w", err)
	}
	return &m, nil
}

func (r *messageRepository) ListConversation(ctx context.Context, conversationID string, before time.Time, limit int) ([]*model.Message, error) {
	q := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}
	var res []*model.Message
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&res).Error; err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	// 查询倒序，翻转为升序
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}

func (r *messageRepository) LatestPerConversation(ctx context.Context, userID string) ([]*model.Message, error) {
	latest := r.db.Model(&model.Message{}).
		Select("conversation_id, MAX(created_at) AS last_at").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("conversation_id")

	var rows []*model.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN (?) AS latest ON messages.conversation_id = latest.conversation_id AND messages.created_at = latest.last_at", latest).
		Order("messages.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("latest per conversation: %w", err)
	}

	// 同一时间戳可能有多条，只保留一条
	seen := make(map[string]struct{}, len(rows))
	res := rows[:0]
	for _, m := range rows {
		if _, ok := seen[m.ConversationID]; ok {
			continue
		}
		seen[m.ConversationID] = struct{}{}
		res = append(res, m)
	}
	return res, nil
}
