// Package catalog resolves content-card references against the external track/book catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/im-delivery/internal/conversation"
	"github.com/d60-Lab/im-delivery/internal/model"
)

// ErrNotFound 引用格式非法或目录中不存在
var ErrNotFound = errors.New("catalog item not found")

// Item 解析结果
type Item struct {
	ItemType      string
	ItemID        string
	Title         string
	Price         float64
	CreatorID     string
	Description   string
	CoverImageURL string
}

// Resolver 只读目录查询
type Resolver interface {
	Resolve(ctx context.Context, itemType, itemID string) (*Item, error)
}

type gormResolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) Resolver { return &gormResolver{db: db} }

func (r *gormResolver) Resolve(ctx context.Context, itemType, itemID string) (*Item, error) {
	if !conversation.ValidID(itemID) {
		return nil, ErrNotFound
	}
	switch itemType {
	case model.ItemTypeTrack:
		var t model.Track
		if err := r.first(ctx, &t, itemID); err != nil {
			return nil, err
		}
		return &Item{ItemType: itemType, ItemID: t.ID, Title: t.Title, Price: t.Price, CreatorID: t.CreatorID, Description: t.Description, CoverImageURL: t.CoverImageURL}, nil
	case model.ItemTypeBook:
		var b model.Book
		if err := r.first(ctx, &b, itemID); err != nil {
			return nil, err
		}
		return &Item{ItemType: itemType, ItemID: b.ID, Title: b.Title, Price: b.Price, CreatorID: b.CreatorID, Description: b.Description, CoverImageURL: b.CoverImageURL}, nil
	}
	return nil, ErrNotFound
}

func (r *gormResolver) first(ctx context.Context, dest interface{}, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("catalog lookup: %w", err)
	}
	return nil
}
