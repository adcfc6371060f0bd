package storage

import (
	"database/sql"
	"time"
)

// Row shapes shared by the SQL backends. Transaction fields are nullable text,
// other clients of the document store may leave them out.

type dbUser struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserName  string    `gorm:"column:username;size:255;uniqueIndex;not null"`
	Password  string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (dbUser) TableName() string { return "users" }

type dbBudget struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	Amount    int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (dbBudget) TableName() string { return "budgets" }

type dbTransaction struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"size:36;uniqueIndex;not null"`
	UserID    string    `gorm:"size:36;index;not null"`
	Name      *string   `gorm:"size:255"`
	Amount    *string   `gorm:"size:64"`
	Image     *string   `gorm:"size:2048"`
	CreatedAt time.Time `gorm:"not null"`
}

func (dbTransaction) TableName() string { return "transactions" }

func nullToPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func ptrToNull(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
