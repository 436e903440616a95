package models

import (
	"encoding/json"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// modelLogger resolves the global logger on each call so that it picks up
// the logger installed by the server at startup
func modelLogger() *zap.Logger {
	return zap.L().Named("persistence.models")
}

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with the aggregate version.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot rebuilds the domain aggregate header
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.ToDomain(),
		Version:    m.Version,
	}
}

// encodeJSON marshals v for a JSON text column. Marshalling the plain structs
// used here cannot fail in practice; a failure is logged and stored as "null".
func encodeJSON(column string, v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		modelLogger().Warn("failed to encode JSON column",
			zap.String("column", column),
			zap.Error(err))
		return "null"
	}
	return string(b)
}

// decodeJSON unmarshals a JSON text column into dst, logging malformed data
func decodeJSON(column string, id uuid.UUID, raw string, dst any) {
	if raw == "" || raw == "null" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		modelLogger().Warn("failed to parse JSON column",
			zap.String("column", column),
			zap.String("id", id.String()),
			zap.String("raw_json", raw),
			zap.Error(err))
	}
}
