package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plan request lifecycle states.
const (
	PlanStatusPending   = "pending"
	PlanStatusResolving = "resolving"
	PlanStatusResolved  = "resolved"
	PlanStatusFailed    = "failed"
)

// PlanRecord stores one plan request: the raw parameters it was asked to
// resolve and, once resolved, the emitted plan. The resolved plan itself is
// immutable; re-requesting a resolve creates a new record.
type PlanRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Environment  string         `gorm:"type:varchar(64);index;not null" json:"environment" validate:"required"`
	Status       string         `gorm:"type:varchar(32);index;not null" json:"status" validate:"required,oneof=pending resolving resolved failed"`
	Parameters   datatypes.JSON `gorm:"type:jsonb" json:"parameters" validate:"required"`
	ResolvedPlan datatypes.JSON `gorm:"type:jsonb" json:"resolved_plan"`
	ErrorCode    string         `gorm:"type:varchar(32)" json:"error_code"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
