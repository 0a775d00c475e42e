package saverepository

import (
	"context"

	"github.com/Amund211/timba/internal/domain"
)

type SaveRepository interface {
	// GetSave returns domain.ErrSaveNotFound when the player has no save
	GetSave(ctx context.Context, playerID string) (domain.Save, error)
	StoreSave(ctx context.Context, save domain.Save) error
}
