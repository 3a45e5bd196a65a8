package storage

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"socialnet/monitoring"
)

// Unit is a unit of work over a single mongo session. Every mutation made
// through the unit's context commits or aborts together. The store does not
// enforce cross-document integrity on its own, so any write that has to touch
// two documents must go through a Unit.
type Unit struct {
	session mongo.Session
	ctx     mongo.SessionContext
	done    bool
}

// Begin opens a session and starts a transaction with majority write concern.
// The caller must always Close the unit, typically in a defer.
func (m *Manager) Begin(ctx context.Context) (*Unit, error) {
	wc := writeconcern.Majority()
	txnOptions := options.Transaction().SetWriteConcern(wc)

	session, err := m.db.Client().StartSession()
	if err != nil {
		return nil, errors.Wrap(err, "starting session")
	}
	if err := session.StartTransaction(txnOptions); err != nil {
		session.EndSession(ctx)
		return nil, errors.Wrap(err, "starting transaction")
	}

	return &Unit{
		session: session,
		ctx:     mongo.NewSessionContext(ctx, session),
	}, nil
}

// Context returns the session-bound context mutations must run under.
func (u *Unit) Context() mongo.SessionContext {
	return u.ctx
}

func (u *Unit) Commit() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.session.CommitTransaction(u.ctx); err != nil {
		monitoring.TransactionsTotal.WithLabelValues("abort").Inc()
		return errors.Wrap(err, "committing transaction")
	}
	monitoring.TransactionsTotal.WithLabelValues("commit").Inc()
	return nil
}

func (u *Unit) Abort() {
	if u.done {
		return
	}
	u.done = true
	monitoring.TransactionsTotal.WithLabelValues("abort").Inc()
	if err := u.session.AbortTransaction(context.Background()); err != nil {
		log.Warningf("Error aborting transaction: %v", err)
	}
}

// Close aborts the unit if it was neither committed nor aborted and always
// ends the session.
func (u *Unit) Close(ctx context.Context) {
	u.Abort()
	u.session.EndSession(ctx)
}

// withUnit runs operation inside a fresh unit. The unit is aborted explicitly
// before any error propagates, so a failure in either step of a dual-document
// write leaves the stored state untouched.
func (m *Manager) withUnit(ctx context.Context, operation func(ctx mongo.SessionContext) error) error {
	unit, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer unit.Close(ctx)

	if err := operation(unit.Context()); err != nil {
		unit.Abort()
		return err
	}
	return unit.Commit()
}
