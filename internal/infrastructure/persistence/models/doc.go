// Package models holds the GORM table mappings for stored analyses.
// Domain entities stay free of ORM tags; mappers in the repository
// convert between the two representations.
package models
