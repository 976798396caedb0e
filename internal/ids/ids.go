package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a random message id.
func New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return id.String(), nil
}
