// Package grpc serves the Roman clock over gRPC.
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/chrissnell/horologium/internal/controllers/restserver"
	"github.com/chrissnell/horologium/pkg/romantime"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Clock supplies the defaults for requests that leave out a place or zone.
// *clock.Clock implements it.
type Clock interface {
	Location() romantime.GeoCoordinate
	Zone() *time.Location
}

// Controller represents the gRPC controller
type Controller struct {
	ctx    context.Context
	wg     *sync.WaitGroup
	Server *grpc.Server
	health *health.Server
	clock  Clock
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewController creates a new gRPC controller instance
func NewController(ctx context.Context, wg *sync.WaitGroup, clk Clock, logger *zap.SugaredLogger) (*Controller, error) {
	if clk == nil {
		return nil, fmt.Errorf("gRPC controller needs a clock")
	}

	ctrl := &Controller{
		ctx:    ctx,
		wg:     wg,
		health: health.NewServer(),
		clock:  clk,
		logger: logger,
		now:    time.Now,
	}

	ctrl.Server = grpc.NewServer(grpc.UnaryInterceptor(ctrl.logCall))

	// Register the clock service, health checks and reflection
	RegisterRomanClockServer(ctrl.Server, ctrl)
	healthpb.RegisterHealthServer(ctrl.Server, ctrl.health)
	reflection.Register(ctrl.Server)

	ctrl.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return ctrl, nil
}

// StartController serves gRPC on l until the controller's context ends
func (c *Controller) StartController(l net.Listener) error {
	if l == nil {
		return fmt.Errorf("gRPC controller needs a listener")
	}

	c.logger.Infof("Starting gRPC controller on %s...", l.Addr())
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.Serve(l); err != nil && c.ctx.Err() == nil {
			c.logger.Errorf("gRPC controller serve error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.StopController()
	}()

	return nil
}

// StopController marks the service as not serving and drains in-flight calls
func (c *Controller) StopController() {
	c.logger.Info("Stopping gRPC controller...")
	c.health.Shutdown()
	c.Server.GracefulStop()
}

func (c *Controller) logCall(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	c.logger.Debugw("gRPC call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start))
	return resp, err
}

// GetTime resolves the Roman hour for a place and instant
func (c *Controller) GetTime(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p := params{req.GetFields()}

	zone, err := c.zone(p)
	if err != nil {
		return nil, err
	}
	coord, err := c.coordinate(p)
	if err != nil {
		return nil, err
	}
	at, err := c.instant(p, zone)
	if err != nil {
		return nil, err
	}

	return toStruct(romantime.Calculate(at, coord))
}

// GetSun returns sunrise, sunset and hour lengths for one civil day
func (c *Controller) GetSun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p := params{req.GetFields()}

	zone, err := c.zone(p)
	if err != nil {
		return nil, err
	}
	coord, err := c.coordinate(p)
	if err != nil {
		return nil, err
	}
	date, err := c.date(p, zone)
	if err != nil {
		return nil, err
	}

	return toStruct(restserver.NewSunResponse(date, zone, coord))
}

// GetMoon returns the lunar phase at an instant. An unset timestamp means now.
func (c *Controller) GetMoon(ctx context.Context, ts *timestamppb.Timestamp) (*structpb.Struct, error) {
	at := c.now()
	if ts.GetSeconds() != 0 || ts.GetNanos() != 0 {
		if err := ts.CheckValid(); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid timestamp: %v", err)
		}
		at = ts.AsTime()
	}

	return toStruct(restserver.NewMoonResponse(at.In(c.clock.Zone())))
}

// GetDate formats a civil date in the Roman style
func (c *Controller) GetDate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p := params{req.GetFields()}

	zone, err := c.zone(p)
	if err != nil {
		return nil, err
	}
	date, err := c.date(p, zone)
	if err != nil {
		return nil, err
	}

	return toStruct(restserver.NewDateResponse(date))
}

// params reads typed request fields out of a Struct
type params struct {
	fields map[string]*structpb.Value
}

func (p params) has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

func (p params) stringField(key string) (string, error) {
	v, ok := p.fields[key]
	if !ok {
		return "", nil
	}
	if _, ok := v.GetKind().(*structpb.Value_StringValue); !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
	return v.GetStringValue(), nil
}

func (p params) numberField(key string) (float64, error) {
	v := p.fields[key]
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	return v.GetNumberValue(), nil
}

func (c *Controller) zone(p params) (*time.Location, error) {
	name, err := p.stringField("timezone")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return c.clock.Zone(), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "unknown timezone %q", name)
	}
	return loc, nil
}

// coordinate reads latitude and longitude, defaulting to the clock's
// location. Either both or neither must be given.
func (c *Controller) coordinate(p params) (romantime.GeoCoordinate, error) {
	hasLat, hasLon := p.has("latitude"), p.has("longitude")
	if !hasLat && !hasLon {
		return c.clock.Location(), nil
	}
	if hasLat != hasLon {
		return romantime.GeoCoordinate{}, status.Error(codes.InvalidArgument, "latitude and longitude must be given together")
	}

	lat, err := p.numberField("latitude")
	if err != nil {
		return romantime.GeoCoordinate{}, err
	}
	lon, err := p.numberField("longitude")
	if err != nil {
		return romantime.GeoCoordinate{}, err
	}

	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return romantime.GeoCoordinate{}, status.Errorf(codes.InvalidArgument, "latitude %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return romantime.GeoCoordinate{}, status.Errorf(codes.InvalidArgument, "longitude %v out of range [-180, 180]", lon)
	}
	return romantime.GeoCoordinate{Latitude: lat, Longitude: lon}, nil
}

func (c *Controller) instant(p params, zone *time.Location) (time.Time, error) {
	s, err := p.stringField("at")
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return c.now().In(zone), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid at %q: expected RFC 3339", s)
	}
	return t.In(zone), nil
}

func (c *Controller) date(p params, zone *time.Location) (time.Time, error) {
	s, err := p.stringField("date")
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		y, m, d := c.now().In(zone).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, zone), nil
	}
	t, err := time.ParseInLocation(restserver.DateLayout, s, zone)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// toStruct converts a REST response body into a Struct with the same fields
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding reply: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding reply: %v", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding reply: %v", err)
	}
	return s, nil
}
