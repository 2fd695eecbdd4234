package models

import "time"

// Module is a video learning resource. Pure content, no workflow state.
type Module struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string       `json:"description" gorm:"type:text;not null" validate:"required"`
	VideoURL    string       `json:"videoUrl" gorm:"not null;size:500" validate:"required,url"`
	Category    TaskCategory `json:"category" gorm:"not null;default:other" validate:"omitempty,task_category"`

	CreatedBy uint      `json:"createdBy" gorm:"not null;index"`
	Creator   User      `json:"creator" gorm:"foreignKey:CreatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Module) TableName() string {
	return "modules"
}
