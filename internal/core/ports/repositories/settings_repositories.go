package repositories

import "context"

// SettingsRepositoryFacade reads system settings (e.g. the balancing account
// configuration key). Returns apperrors.ErrNotFound for an absent key.
type SettingsRepositoryFacade interface {
	Get(ctx context.Context, key string) (string, error)
}
