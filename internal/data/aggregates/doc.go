// Package aggregates implements the lecture, feedback and resolution write
// boundaries over the table repos in internal/data/repos.
//
// Every write method runs inside executeWrite: one gorm transaction, errors
// mapped to domain codes, hooks observed once per call.
package aggregates
