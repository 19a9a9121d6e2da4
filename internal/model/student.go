package model

import "time"

// Student is the santri owning an account. Student records are maintained by
// the registration module; the ledger only reads them.
type Student struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	NIS       string    `gorm:"column:nis;type:varchar(32);uniqueIndex;not null" json:"nis"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}
