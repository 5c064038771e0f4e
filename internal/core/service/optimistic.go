package service

import "context"

// Reconcile applies a tentative value immediately, then commits the
// authoritative value returned by commit, or reverts to the previous one
// when commit fails. It generalises the tentative-update-then-rollback flow
// used by list mutations across the client.
func Reconcile[T any](ctx context.Context, get func() T, set func(T), tentative T, commit func(context.Context) (T, error)) error {
	previous := get()
	set(tentative)

	final, err := commit(ctx)
	if err != nil {
		set(previous)
		return err
	}
	set(final)
	return nil
}
