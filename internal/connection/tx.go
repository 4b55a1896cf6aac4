package connection

import (
	"context"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// runInTx runs fn inside a transaction on session. The transaction is
// committed when fn returns nil and rolled back on every other exit,
// including a panic in fn.
func runInTx(ctx context.Context, session simplepg.Session, fn func(tx simplepg.Tx) error) error {
	tx, err := session.Begin(ctx)
	if err != nil {
		return err
	}

	var committed bool
	defer func() {
		if !committed {
			// The error that aborted the transaction is what callers need.
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}
