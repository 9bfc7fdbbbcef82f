package domain

import "time"

// AccessAudit logs override and catalog mutations
type AccessAudit struct {
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	ObjectType string    `json:"object_type"`
	ObjectRef  string    `json:"object_ref"`
	Action     string    `json:"action"`
	Payload    []byte    `json:"payload,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
