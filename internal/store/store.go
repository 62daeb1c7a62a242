package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("version conflict")
	ErrCorrupt           = errors.New("corrupt document")
)

// Collection names the independently persisted documents. The values match
// the keys the browser build kept in localStorage so legacy exports load as-is.
type Collection string

const (
	Products  Collection = "pos_products"
	Debtors   Collection = "pos_debtors"
	Customers Collection = "pos_customers"
	Sales     Collection = "pos_sales"
)

func Collections() []Collection {
	return []Collection{Products, Debtors, Customers, Sales}
}

type Document struct {
	Body    []byte
	Version int64
}

// DocumentStore persists whole collection documents with optimistic
// versioning. Load returns ErrNotFound for a collection that was never saved.
// Save succeeds only when expectedVersion equals the stored version (0 for a
// new document) and returns the new version; otherwise it returns ErrConflict.
type DocumentStore interface {
	Load(ctx context.Context, key Collection) (Document, error)
	Save(ctx context.Context, key Collection, body []byte, expectedVersion int64) (int64, error)
}
