package ports

import "context"

// StateStorage durably stores serialized state under named slots. Load
// returns domain.ErrSlotEmpty when no prior state exists; implementations
// also report corrupt slots as empty rather than failing.
type StateStorage interface {
	Save(ctx context.Context, slot string, data []byte) error
	Load(ctx context.Context, slot string) ([]byte, error)
	Delete(ctx context.Context, slot string) error
}
