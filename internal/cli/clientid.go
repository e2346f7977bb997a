package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tbourn/go-support-desk/internal/kvstore"
)

const clientIDKey = "client_id"

// loadClientID returns the install's client id, minting and saving a new
// one on first use. The server keys reader history and feedback by it.
func loadClientID(ctx context.Context, store kvstore.Store) (string, error) {
	b, err := store.Get(ctx, clientIDKey)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	case !errors.Is(err, kvstore.ErrNotFound):
		return "", fmt.Errorf("read client id: %w", err)
	}

	id := uuid.NewString()
	if err := store.Put(ctx, clientIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("save client id: %w", err)
	}
	return id, nil
}
