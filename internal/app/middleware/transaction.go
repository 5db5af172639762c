package middleware

import (
	"context"
	"fmt"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction runs each command in its own unit of work. The unit commits
// when the handler succeeds and is rolled back otherwise. Callbacks
// registered with uow.AfterCommit run only after a successful commit. Those
// registered with uow.OnFailure run after a rollback or a failed commit.
// Units exposing InjectContext (mongo sessions) decorate the context first.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, ok := uow.FromContext(ctx); ok {
				return nextFn(ctx, cmd)
			}
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			execCtx := ctx
			if injector, ok := unit.(interface {
				InjectContext(context.Context) context.Context
			}); ok {
				execCtx = injector.InjectContext(ctx)
			}
			execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
			execCtx, hooks := uow.ContextWithHooks(execCtx)
			settled := false
			defer func() {
				if !settled {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := nextFn(execCtx, cmd)
			if err != nil {
				settled = true
				_ = unit.Rollback(execCtx)
				return nil, hooks.Failed(context.WithoutCancel(execCtx), err)
			}
			settled = true
			if err := unit.Commit(execCtx); err != nil {
				return nil, hooks.Failed(context.WithoutCancel(execCtx), fmt.Errorf("%w: %w", uow.ErrCommitFailed, err))
			}
			if err := hooks.Committed(context.WithoutCancel(execCtx)); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
