// Package aggregates defines the write boundaries of the lecture feedback core.
//
// Contracts here carry no persistence details. Each aggregate method is one
// atomic unit: it either applies every write it names or none of them.
package aggregates
