// Package restserver serves the Roman clock, ephemeris and almanac over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/horologium/internal/almanac"
	"github.com/chrissnell/horologium/internal/log"
	"github.com/chrissnell/horologium/internal/weather"
	"github.com/chrissnell/horologium/pkg/config"
	"github.com/chrissnell/horologium/pkg/romantime"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Clock is the live state served by /now and changed by PUT /location.
// *clock.Clock implements it.
type Clock interface {
	Snapshot() *romantime.Snapshot
	Weather() *weather.Report
	Location() romantime.GeoCoordinate
	Zone() *time.Location
	SetLocation(ctx context.Context, coord romantime.GeoCoordinate) *romantime.Snapshot
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	clock      Clock
	almanac    almanac.Provider
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, clk Clock, provider almanac.Provider, logger *zap.SugaredLogger) (*Controller, error) {
	if clk == nil {
		return nil, fmt.Errorf("REST server needs a clock")
	}
	if provider == nil {
		return nil, fmt.Errorf("REST server needs an almanac provider")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		clock:      clk,
		almanac:    provider,
		logger:     logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultRESTPort)
		rc.Port = config.DefaultRESTPort
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server on its configured address
func (c *Controller) StartController() error {
	return c.start(nil)
}

// StartControllerOn serves the REST API on an existing listener, such as one
// side of a connection multiplexer. TLS settings are not applied.
func (c *Controller) StartControllerOn(l net.Listener) error {
	if l == nil {
		return fmt.Errorf("REST server needs a listener")
	}
	return c.start(l)
}

func (c *Controller) start(l net.Listener) error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		switch {
		case l != nil:
			err = c.Server.Serve(l)
		case c.restConfig.Cert != "" && c.restConfig.Key != "":
			err = c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		default:
			err = c.Server.ListenAndServe()
		}
		// a shared listener may close under us during shutdown
		if err != http.ErrServerClosed && c.ctx.Err() == nil {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogMiddleware)

	router.HandleFunc("/now", c.handlers.GetNow).Methods(http.MethodGet)
	router.HandleFunc("/time", c.handlers.GetTime).Methods(http.MethodGet)
	router.HandleFunc("/sun", c.handlers.GetSun).Methods(http.MethodGet)
	router.HandleFunc("/moon", c.handlers.GetMoon).Methods(http.MethodGet)
	router.HandleFunc("/date", c.handlers.GetDate).Methods(http.MethodGet)
	router.HandleFunc("/day", c.handlers.GetDay).Methods(http.MethodGet)
	router.HandleFunc("/location", c.handlers.PutLocation).Methods(http.MethodPut)
	router.HandleFunc("/logs/http", c.handlers.GetHTTPLogs).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(c.handlers.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(c.handlers.methodNotAllowed)

	return router
}
