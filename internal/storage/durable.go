package storage

import (
	"errors"
	"fmt"

	"inspectoriq/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Durable is the cross-session store backed by the kv_entries table.
type Durable struct{ db *gorm.DB }

func NewDurable(db *gorm.DB) (*Durable, error) {
	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &Durable{db: db}, nil
}

// For binds the store to one user, yielding a Scope.
func (d *Durable) For(userID int) Scope { return &durableScope{db: d.db, userID: userID} }

type durableScope struct {
	db     *gorm.DB
	userID int
}

func (s *durableScope) Get(key string) (string, bool) {
	var e model.KVEntry
	err := s.db.Where("user_id = ? AND `key` = ?", s.userID, key).First(&e).Error
	if err != nil {
		return "", false
	}
	return e.Value, true
}

func (s *durableScope) Set(key, value string) error {
	e := model.KVEntry{UserID: s.userID, Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *durableScope) Delete(key string) error {
	err := s.db.Where("user_id = ? AND `key` = ?", s.userID, key).Delete(&model.KVEntry{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
