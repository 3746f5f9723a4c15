// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: base persistence models (BaseModel, AggregateModel, JournalAggregateModel)
//   - journal.go: journals, issues and the issue_articles join table
//   - account.go: the global account directory and account_roles
//   - article.go: articles with authors, frozen authors and identifiers
//   - galley.go: galley file metadata
//
// The tables are created by the SQL files under migrations/. Tests use AutoMigrate on SQLite.
package models
