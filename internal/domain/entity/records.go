package entity

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalRecord is one entry of an application's append-only history. A
// step appears at most once per pass; PassNumber increments when a revision
// sends the application back through a step it already visited.
type ApprovalRecord struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	Step          Step      `json:"step"`
	Decision      Decision  `json:"decision"`
	ActorID       string    `json:"actor_id"`
	Notes         string    `json:"notes,omitempty"`
	PassNumber    int       `json:"pass_number"`
	Timestamp     time.Time `json:"timestamp"`
}

// DisbursementRecord captures the shopkeeper's funds-transfer confirmation.
// Created once, immutable afterwards.
type DisbursementRecord struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	ActorID       string    `json:"actor_id"`
	TxDate        string    `json:"tx_date"`
	TxTime        string    `json:"tx_time"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuthorizationRecord captures the chairperson's final sign-off on a
// disbursement. Created once, immutable afterwards.
type AuthorizationRecord struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	ActorID       string    `json:"actor_id"`
	AuthDate      string    `json:"auth_date"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
