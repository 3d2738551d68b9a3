package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered participant. The ID is minted by the external
// identity provider at sign-up, not by this service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
