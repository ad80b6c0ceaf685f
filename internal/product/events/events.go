// Package events defines the product lifecycle events published after successful mutations.
package events

import (
	"encoding/json"
	"time"
)

const (
	SubjectPrefix         = "product."
	ProductCreatedSubject = SubjectPrefix + "created"
	ProductUpdatedSubject = SubjectPrefix + "updated"
	ProductDeletedSubject = SubjectPrefix + "deleted"
)

// Subjects lists every subject a product stream has to capture.
var Subjects = []string{ProductCreatedSubject, ProductUpdatedSubject, ProductDeletedSubject}

// ProductChangedEvent carries the state of a product after a create or an update.
type ProductChangedEvent struct {
	subject     string
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	HasDelivery bool      `json:"has_delivery"`
	Stock       int       `json:"stock"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewProductCreated(id, name, category string, hasDelivery bool, stock int) ProductChangedEvent {
	return newChanged(ProductCreatedSubject, id, name, category, hasDelivery, stock)
}

func NewProductUpdated(id, name, category string, hasDelivery bool, stock int) ProductChangedEvent {
	return newChanged(ProductUpdatedSubject, id, name, category, hasDelivery, stock)
}

func newChanged(subject, id, name, category string, hasDelivery bool, stock int) ProductChangedEvent {
	return ProductChangedEvent{
		subject:     subject,
		ProductID:   id,
		Name:        name,
		Category:    category,
		HasDelivery: hasDelivery,
		Stock:       stock,
		OccurredAt:  time.Now().UTC(),
	}
}

func (e ProductChangedEvent) Subject() string {
	return e.subject
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductDeletedEvent struct {
	ProductID  string    `json:"product_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewProductDeleted(id string) ProductDeletedEvent {
	return ProductDeletedEvent{ProductID: id, OccurredAt: time.Now().UTC()}
}

func (e ProductDeletedEvent) Subject() string {
	return ProductDeletedSubject
}

func (e ProductDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
