package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSlot maps the cart_slots table created by the goose migrations.
type CartSlot struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (CartSlot) TableName() string { return "cart_slots" }

// SQL stores payloads in cart_slots through gorm (postgres or sqlite).
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

func (s *SQL) Read(ctx context.Context, sessionID string) ([]byte, error) {
	var row CartSlot
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read cart slot: %w", err)
	}
	return []byte(row.Payload), nil
}

func (s *SQL) Write(ctx context.Context, sessionID string, payload []byte) error {
	row := CartSlot{SessionID: sessionID, Payload: string(payload), UpdatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write cart slot: %w", err)
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
