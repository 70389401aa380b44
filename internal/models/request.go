package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChangeRequest represents one network-configuration change request. History
// entries are embedded so a request and its audit trail live in one document.
type ChangeRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OpID           string             `bson:"op_id" json:"op_id"`
	Feature        string             `bson:"feature" json:"feature"`
	Parameter      string             `bson:"parameter" json:"parameter"`
	Value          string             `bson:"value" json:"value"`
	Zone           string             `bson:"zone" json:"zone"`
	Sites          []string           `bson:"sites" json:"sites"`
	DesiredDate    *string            `bson:"desired_date,omitempty" json:"desired_date"`
	PlannedDate    *string            `bson:"planned_date,omitempty" json:"planned_date"`
	Priority       string             `bson:"priority" json:"priority"`
	InitialComment *string            `bson:"initial_comment,omitempty" json:"initial_comment"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
	History        []HistoryEntry     `bson:"history,omitempty" json:"-"`
}

// HistoryEntry is one immutable audit record of a status change.
// FromStatus is nil only for the entry written at creation.
type HistoryEntry struct {
	At         time.Time `bson:"at" json:"at"`
	Department string    `bson:"department" json:"department"`
	FromStatus *string   `bson:"from_status,omitempty" json:"from_status"`
	ToStatus   string    `bson:"to_status" json:"to_status"`
	Comment    string    `bson:"comment" json:"comment"`
}

// RequestDetail is the response payload for a single request with its history.
type RequestDetail struct {
	Request ChangeRequest  `json:"request"`
	History []HistoryEntry `json:"history"`
}
