package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/pkg/database"
)

func TestResolve(t *testing.T) {
	db := database.NewTestDB(t)
	require.NoError(t, db.Create(&model.Track{ID: "t1", Title: "Night Drive", Price: 1.99, CreatorID: "c1", CoverImageURL: "https://cdn/t1.png"}).Error)
	require.NoError(t, db.Create(&model.Book{ID: "b1", Title: "Go in Practice", Price: 12, CreatorID: "c2"}).Error)

	r := NewResolver(db)
	ctx := context.Background()

	item, err := r.Resolve(ctx, model.ItemTypeTrack, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Night Drive", item.Title)
	assert.Equal(t, 1.99, item.Price)
	assert.Equal(t, "c1", item.CreatorID)

	item, err = r.Resolve(ctx, model.ItemTypeBook, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Go in Practice", item.Title)

	t.Run("wrong collection", func(t *testing.T) {
		_, err := r.Resolve(ctx, model.ItemTypeBook, "t1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := r.Resolve(ctx, model.ItemTypeTrack, "t1' OR 1=1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := r.Resolve(ctx, "album", "t1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
