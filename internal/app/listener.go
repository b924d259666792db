package app

import (
	"context"
	"fmt"
	"net"
	"sync"

	grpcserver "github.com/chrissnell/horologium/internal/controllers/grpc"
	"github.com/chrissnell/horologium/internal/controllers/restserver"
	"github.com/soheilhy/cmux"
)

// serveShared opens the REST address once and splits it between gRPC and
// HTTP. gRPC clients are recognized by their content-type header.
func (a *App) serveShared(ctx context.Context, wg *sync.WaitGroup, rest *restserver.Controller, rpc *grpcserver.Controller) error {
	l, err := net.Listen("tcp", rest.Server.Addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", rest.Server.Addr, err)
	}

	m := cmux.New(l)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	if err := rpc.StartController(grpcL); err != nil {
		l.Close()
		return err
	}
	if err := rest.StartControllerOn(httpL); err != nil {
		l.Close()
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.Serve(); err != nil && ctx.Err() == nil {
			a.logger.Errorf("connection multiplexer error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	a.logger.Infof("serving gRPC and REST on %s", l.Addr())
	return nil
}
