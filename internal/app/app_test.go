package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/horologium/internal/almanac"
	grpcserver "github.com/chrissnell/horologium/internal/controllers/grpc"
	"github.com/chrissnell/horologium/pkg/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRunStopsWithContext(t *testing.T) {
	cfg := config.Default()
	cfg.REST.ListenAddr = "127.0.0.1"
	cfg.REST.Port = 18931
	cfg.Almanac.Backend = "sqlite"
	cfg.Almanac.Path = filepath.Join(t.TempDir(), "almanac.db")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- New(cfg, zap.NewNop().Sugar()).Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
}

func TestRunServesGRPCAndRESTOnOnePort(t *testing.T) {
	cfg := config.Default()
	cfg.REST.ListenAddr = "127.0.0.1"
	cfg.REST.Port = 18932
	cfg.GRPC.Enabled = true
	cfg.Almanac.Backend = "sqlite"
	cfg.Almanac.Path = filepath.Join(t.TempDir(), "almanac.db")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- New(cfg, zap.NewNop().Sugar()).Run(ctx)
	}()

	addr := "127.0.0.1:18932"
	var resp *http.Response
	var err error
	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err = http.Get("http://" + addr + "/date?date=2024-03-15")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("REST server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	var date struct {
		Short string `json:"short"`
	}
	err = json.NewDecoder(resp.Body).Decode(&date)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if date.Short != "Idibus Mar MMXXIV" {
		t.Errorf("REST short = %q", date.Short)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	req, err := structpb.NewStruct(map[string]any{"date": "2024-03-16"})
	if err != nil {
		t.Fatal(err)
	}
	rpcCtx, rpcCancel := context.WithTimeout(ctx, 5*time.Second)
	out := new(structpb.Struct)
	err = conn.Invoke(rpcCtx, grpcserver.MethodGetDate, req, out)
	rpcCancel()
	conn.Close()
	if err != nil {
		t.Fatalf("GetDate over gRPC: %v", err)
	}
	if got := out.GetFields()["short"].GetStringValue(); got != "a.d. XVII Kal Apr MMXXIV" {
		t.Errorf("gRPC short = %q", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
}

func TestRunStartupErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.ConfigData)
		target error
	}{
		{"unknown almanac backend", func(c *config.ConfigData) { c.Almanac.Backend = "etcd" }, almanac.ErrUnknownBackend},
		{"bad timezone", func(c *config.ConfigData) { c.Location.Timezone = "Roma/Antiqua" }, nil},
		{"bad tick interval", func(c *config.ConfigData) { c.TickInterval = "-1s" }, nil},
		{"grpc with tls", func(c *config.ConfigData) {
			c.GRPC.Enabled = true
			c.REST.Cert, c.REST.Key = "cert.pem", "key.pem"
		}, config.ErrGRPCWithTLS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)

			err := New(cfg, zap.NewNop().Sugar()).Run(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("err = %v, expected %v", err, tt.target)
			}
		})
	}
}
