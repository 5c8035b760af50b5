package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lunatickworker/casino-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAnnouncement(t *testing.T, db *gorm.DB, title, status string, pinned bool) *model.Announcement {
	t.Helper()
	a := &model.Announcement{
		Title:     title,
		Content:   "内容",
		Status:    status,
		Pinned:    pinned,
		CreatedBy: "admin",
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func TestAnnouncementPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("DraftPublishes", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAnnouncementRepository(db)
		a := seedAnnouncement(t, db, "维护公告", model.AnnouncementStatusDraft, false)

		err := repo.Publish(ctx, nil, a.ID, time.Now())
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AnnouncementStatusPublished, got.Status)
		assert.NotNil(t, got.PublishedAt)
	})

	t.Run("PublishedCannotRepublish", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAnnouncementRepository(db)
		a := seedAnnouncement(t, db, "维护公告", model.AnnouncementStatusPublished, false)

		err := repo.Publish(ctx, nil, a.ID, time.Now())
		assert.Error(t, err)
	})

	t.Run("ArchiveOnlyFromPublished", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAnnouncementRepository(db)
		draft := seedAnnouncement(t, db, "草稿", model.AnnouncementStatusDraft, false)

		err := repo.Archive(ctx, draft.ID)
		assert.Error(t, err)

		published := seedAnnouncement(t, db, "已发布", model.AnnouncementStatusPublished, false)
		require.NoError(t, repo.Archive(ctx, published.ID))

		got, err := repo.GetByID(ctx, published.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AnnouncementStatusArchived, got.Status)
	})
}

func TestAnnouncementListPublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	// 置顶公告必须排在最前，其余按发布时间倒序
	old := seedAnnouncement(t, db, "旧公告", model.AnnouncementStatusDraft, false)
	require.NoError(t, repo.Publish(ctx, nil, old.ID, time.Now().Add(-time.Hour)))

	fresh := seedAnnouncement(t, db, "新公告", model.AnnouncementStatusDraft, false)
	require.NoError(t, repo.Publish(ctx, nil, fresh.ID, time.Now()))

	pinned := seedAnnouncement(t, db, "置顶公告", model.AnnouncementStatusDraft, true)
	require.NoError(t, repo.Publish(ctx, nil, pinned.ID, time.Now().Add(-2*time.Hour)))

	seedAnnouncement(t, db, "草稿不展示", model.AnnouncementStatusDraft, false)

	list, total, err := repo.ListPublished(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	assert.Equal(t, "置顶公告", list[0].Title)
	assert.Equal(t, "新公告", list[1].Title)
	assert.Equal(t, "旧公告", list[2].Title)
}
