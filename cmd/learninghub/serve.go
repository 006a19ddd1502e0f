package main

import (
	"context"
	"io"

	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/di"
	"github.com/learninghub/learninghub/internal/logger"
)

func runServe(ctx context.Context, injector *do.RootScope, _ []string, _ io.Writer) error {
	if err := di.StartGateway(injector); err != nil {
		return err
	}
	wait(ctx, injector)
	return nil
}

func runMock(ctx context.Context, injector *do.RootScope, _ []string, _ io.Writer) error {
	if err := di.StartMock(injector); err != nil {
		return err
	}
	wait(ctx, injector)
	return nil
}

// wait blocks until the process is asked to stop. The caller's deferred
// container shutdown stops the servers.
func wait(ctx context.Context, injector *do.RootScope) {
	<-ctx.Done()
	do.MustInvoke[*logger.Logger](injector).Info("Shutting down gracefully...")
}
