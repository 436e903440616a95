// Package models holds the gorm row types and their conversions to and from
// domain aggregates. Domain packages never import gorm.
//
// Line items and per-store stock maps live in JSON text columns so the same
// schema runs on SQLite and PostgreSQL.
package models
