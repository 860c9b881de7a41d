package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultInBlockSize is the largest number of values placed in a single
// IN (...) list. Several databases reject or degrade on larger lists.
const DefaultInBlockSize = 1000

var inBlockSize = DefaultInBlockSize

// SetInBlockSize overrides the IN list block size. Non-positive values
// restore the default.
func SetInBlockSize(size int) {
	if size <= 0 {
		size = DefaultInBlockSize
	}
	inBlockSize = size
}

// InBlockSize returns the configured IN list block size.
func InBlockSize() int {
	return inBlockSize
}

// BlockSizeFor returns how many items fit in one block when each item binds
// perItem parameters, so a block never binds more than InBlockSize values.
func BlockSizeFor(perItem int) int {
	return max(1, inBlockSize/max(1, perItem))
}

// Partition splits items into consecutive blocks of at most size elements.
// The returned blocks share the backing array of items.
func Partition[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = inBlockSize
	}
	if len(items) == 0 {
		return nil
	}

	blocks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		blocks = append(blocks, items[start:end:end])
	}
	return blocks
}

// ForEachBlock runs fn for each IN-list sized block of items and stops at
// the first error.
func ForEachBlock[T any](items []T, fn func(block []T) error) error {
	for _, block := range Partition(items, inBlockSize) {
		if err := fn(block); err != nil {
			return err
		}
	}
	return nil
}

// ForUpdate is a GORM scope that takes pessimistic row locks on the selected
// rows. SQLite has no row-level locks and serializes writers already, so the
// clause is omitted there.
func ForUpdate() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
			return db
		}
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
}
