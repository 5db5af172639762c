package middleware

import (
	"context"
	"errors"
	"testing"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/uow"
	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

type txUnit struct {
	commitErr error
	commits   int
	rollbacks int
}

func (u *txUnit) Venues() domainvenues.Repository    { return nil }
func (u *txUnit) Bookings() domainbooking.Repository { return nil }

func (u *txUnit) Commit(context.Context) error {
	u.commits++
	return u.commitErr
}

func (u *txUnit) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

type txFactory struct {
	unit *txUnit
}

func (f txFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

func TestTransactionSettlesHooks(t *testing.T) {
	conflict := errors.New("write conflict")
	handlerErr := errors.New("selection rejected")
	tests := []struct {
		name          string
		commitErr     error
		handlerErr    error
		wantErr       error
		wantCommitted bool
		wantFailed    error
		wantRollbacks int
	}{
		{name: "commit", wantCommitted: true},
		{name: "commit fails", commitErr: conflict, wantErr: uow.ErrCommitFailed, wantFailed: conflict},
		{name: "handler fails", handlerErr: handlerErr, wantErr: handlerErr, wantFailed: handlerErr, wantRollbacks: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := &txUnit{commitErr: tt.commitErr}
			var committed bool
			var failed error
			base := commandFunc(func(ctx context.Context, _ commands.Command) (any, error) {
				if err := uow.AfterCommit(ctx, func(context.Context) error {
					committed = true
					return nil
				}); err != nil {
					return nil, err
				}
				uow.OnFailure(ctx, func(_ context.Context, err error) error {
					failed = err
					return nil
				})
				return &testResult{Value: 1}, tt.handlerErr
			})
			bus := ChainCommands(base, Transaction(txFactory{unit: unit}, nil))

			_, err := bus.Dispatch(context.Background(), testCommand{})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if committed != tt.wantCommitted {
				t.Fatalf("after-commit ran = %v", committed)
			}
			if tt.wantFailed == nil && failed != nil {
				t.Fatalf("failure hook ran with %v", failed)
			}
			if tt.wantFailed != nil && !errors.Is(failed, tt.wantFailed) {
				t.Fatalf("failure hook got %v, want %v", failed, tt.wantFailed)
			}
			if unit.rollbacks != tt.wantRollbacks {
				t.Fatalf("rollbacks = %d, want %d", unit.rollbacks, tt.wantRollbacks)
			}
		})
	}
}

func TestTransactionFailureHookReplacesError(t *testing.T) {
	unit := &txUnit{commitErr: errors.New("write conflict")}
	replaced := errors.New("dates not saved")
	base := commandFunc(func(ctx context.Context, _ commands.Command) (any, error) {
		uow.OnFailure(ctx, func(_ context.Context, err error) error {
			return errors.Join(replaced, err)
		})
		return nil, nil
	})
	bus := ChainCommands(base, Transaction(txFactory{unit: unit}, nil))

	_, err := bus.Dispatch(context.Background(), testCommand{})
	if !errors.Is(err, replaced) || !errors.Is(err, uow.ErrCommitFailed) {
		t.Fatalf("expected replaced error, got %v", err)
	}
	if unit.commits != 1 {
		t.Fatalf("commits = %d", unit.commits)
	}
}

func TestAfterCommitWithoutUnitRunsNow(t *testing.T) {
	ran := false
	err := uow.AfterCommit(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("ran = %v, err = %v", ran, err)
	}
}
