package query

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/b0ase/portal/dao/model"
)

type diaryDao struct {
	db *gorm.DB
}

// Create writes the entry and its action items in one transaction, so a failed
// item insert leaves no entry behind. Items are numbered in the given order.
func (d *diaryDao) Create(ctx context.Context, e *model.DiaryEntry) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := e.ActionItems
		if err := tx.Omit("ActionItems").Create(e).Error; err != nil {
			return translate(err, "create diary entry")
		}
		for i := range items {
			items[i].DiaryEntryID = e.ID
			items[i].Author = e.Author
			items[i].OrderVal = i
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return translate(err, "create diary action items for "+e.ID)
			}
		}
		e.ActionItems = items
		return nil
	})
}

func (d *diaryDao) Get(ctx context.Context, id string) (*model.DiaryEntry, error) {
	var e model.DiaryEntry
	err := d.db.WithContext(ctx).Preload("ActionItems", orderItems).Where("id = ?", id).First(&e).Error
	if err != nil {
		return nil, translate(err, "get diary entry "+id)
	}
	return &e, nil
}

// List returns the author's entries newest first, each with its action items.
func (d *diaryDao) List(ctx context.Context, author string, page Page) ([]*model.DiaryEntry, int64, error) {
	db := d.db.WithContext(ctx).Model(&model.DiaryEntry{}).Where("author = ?", author).Session(&gorm.Session{})
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, 0, translate(err, "count diary entries")
	}
	var rows []*model.DiaryEntry
	err := page.apply(db.Order("entry_timestamp DESC")).Preload("ActionItems", orderItems).Find(&rows).Error
	if err != nil {
		return nil, 0, translate(err, "list diary entries")
	}
	return rows, count, nil
}

// SetActionItemCompleted updates one of the author's action items and returns it.
func (d *diaryDao) SetActionItemCompleted(
	ctx context.Context, author, itemID string, completed bool,
) (*model.DiaryActionItem, error) {
	db := d.db.WithContext(ctx)
	res := db.Model(&model.DiaryActionItem{}).
		Where("id = ? AND author = ?", itemID, author).
		Update("is_completed", completed)
	if res.Error != nil {
		return nil, translate(res.Error, "update diary action item "+itemID)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("diary action item %s: %w", itemID, ErrNotFound)
	}
	var item model.DiaryActionItem
	if err := db.Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, translate(err, "get diary action item "+itemID)
	}
	return &item, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_val ASC")
}
