// Package ordering keeps manual positions for rows that share a scope.
//
// Positions are assigned eagerly when rows are written so listing a scope is
// a plain ascending sort on the sort_order column. Positions are unique at
// creation time but are not compacted afterwards: deletes leave gaps and a
// bulk reorder stores whatever values the caller sends.
package ordering

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column is the database column holding an item's position.
const Column = "sort_order"

// ErrUnownedItems is returned by VerifyOwnership when at least one
// requested id does not belong to the owner (or does not exist at all).
var ErrUnownedItems = errors.New("ordering: items not owned by requester")

// Scope is the grouping key positions are unique within. Categories are
// scoped by owner; todos by owner and category, where a nil category is
// the owner's unspecified bucket.
type Scope struct {
	UserID      uuid.UUID
	PerCategory bool
	CategoryID  *uuid.UUID
}

func UserScope(userID uuid.UUID) Scope {
	return Scope{UserID: userID}
}

func CategoryScope(userID uuid.UUID, categoryID *uuid.UUID) Scope {
	return Scope{UserID: userID, PerCategory: true, CategoryID: categoryID}
}

// Apply restricts a query to the scope. It is meant for db.Scopes.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	db = db.Where("user_id = ?", s.UserID)
	if !s.PerCategory {
		return db
	}
	if s.CategoryID == nil {
		return db.Where("category_id IS NULL")
	}
	return db.Where("category_id = ?", *s.CategoryID)
}

// InsertAtTop places the item with id at position 0 and shifts every other
// item in the scope down by one. The item itself must already be stored
// with position 0. Run it inside the transaction that created the item.
func InsertAtTop(tx *gorm.DB, model any, scope Scope, id uuid.UUID) error {
	err := tx.Model(model).
		Scopes(scope.Apply).
		Where("id <> ?", id).
		UpdateColumn(Column, gorm.Expr(Column+" + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("shift positions: %w", err)
	}
	return nil
}

// NextPosition returns the position after the current maximum in scope.
// An empty scope yields 1.
func NextPosition(tx *gorm.DB, model any, scope Scope) (int, error) {
	var maxOrder sql.NullInt64
	err := tx.Model(model).
		Scopes(scope.Apply).
		Select("MAX(" + Column + ")").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, fmt.Errorf("read max position: %w", err)
	}
	if !maxOrder.Valid {
		return 1, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

// Move is a single entry of a bulk reorder. When MoveScope is set the item
// is also reassigned to CategoryID (nil meaning the unspecified bucket).
type Move struct {
	ID         uuid.UUID
	Order      int
	MoveScope  bool
	CategoryID *uuid.UUID
}

// VerifyOwnership checks that every distinct id in moves belongs to userID.
// Duplicate ids are counted once.
func VerifyOwnership(tx *gorm.DB, model any, userID uuid.UUID, moves []Move) error {
	ids := distinctIDs(moves)
	if len(ids) == 0 {
		return nil
	}
	var owned int64
	err := tx.Model(model).
		Scopes(UserScope(userID).Apply).
		Where("id IN ?", ids).
		Count(&owned).Error
	if err != nil {
		return fmt.Errorf("verify ownership: %w", err)
	}
	if owned != int64(len(ids)) {
		return ErrUnownedItems
	}
	return nil
}

// BulkReorder verifies ownership of every item first and only then writes
// each position (and scope, when requested) verbatim. Nothing is written if
// any id is not owned. Moves are applied in one transaction.
func BulkReorder(db *gorm.DB, model any, userID uuid.UUID, moves []Move) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := VerifyOwnership(tx, model, userID, moves); err != nil {
			return err
		}
		for _, m := range moves {
			updates := map[string]any{Column: m.Order}
			if m.MoveScope {
				updates["category_id"] = nil
				if m.CategoryID != nil {
					updates["category_id"] = *m.CategoryID
				}
			}
			err := tx.Model(model).
				Scopes(UserScope(userID).Apply).
				Where("id = ?", m.ID).
				UpdateColumns(updates).Error
			if err != nil {
				return fmt.Errorf("apply position for %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// RemoveFromScope moves every todo-like row of userID in categoryID to the
// unspecified bucket. Positions are kept as they are, so they may collide
// with rows already in that bucket until the next explicit reorder.
func RemoveFromScope(tx *gorm.DB, model any, userID, categoryID uuid.UUID) (int64, error) {
	result := tx.Model(model).
		Scopes(CategoryScope(userID, &categoryID).Apply).
		UpdateColumn("category_id", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("clear category: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func distinctIDs(moves []Move) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(moves))
	ids := make([]uuid.UUID, 0, len(moves))
	for _, m := range moves {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		ids = append(ids, m.ID)
	}
	return ids
}
