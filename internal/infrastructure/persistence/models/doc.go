// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by uuid-keyed records
// - printing.go: print templates, entity snapshots and attachments
// - integration.go: integration records
// - setting.go: application configuration values
//
// Map-valued domain fields are stored as JSON documents and decoded in ToDomain.
package models
