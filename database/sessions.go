package database

import (
	"errors"
	"learnfront/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepo persists sessions so they survive a restart
type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Save inserts or replaces the session row
func (r *SessionRepo) Save(s *models.Session) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(s).Error
}

func (r *SessionRepo) Find(id string) (*models.Session, error) {
	var s models.Session
	err := r.db.Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Session{}).Error
}

// LoadActive returns the sessions that have not expired at now
func (r *SessionRepo) LoadActive(now time.Time) ([]models.Session, error) {
	var out []models.Session
	err := r.db.Where("expires_at > ?", now).Order("created_at").Find(&out).Error
	return out, err
}

// PruneExpired deletes sessions expired at now and reports how many went
func (r *SessionRepo) PruneExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
