// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-recovery
//
// go-recovery is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-recovery is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-recovery.  If not, see <https://www.gnu.org/licenses/>.

// Package recoveryd wires the recovery coordinator daemon: the ledger it
// reads, the coordinator and its rescuer cache, and the REST server.
package recoveryd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/algorand/go-recovery/config"
	apiServer "github.com/algorand/go-recovery/daemon/recoveryd/api/server"
	"github.com/algorand/go-recovery/daemon/recoveryd/api/client"
	v1 "github.com/algorand/go-recovery/daemon/recoveryd/api/server/v1"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/simledger"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/recovery"
	"github.com/algorand/go-recovery/recovery/rescuercache"
	"github.com/algorand/go-recovery/util/metrics"
	"github.com/algorand/go-recovery/util/timers"
)

// maxHeaderBytes must have enough room to hold an api token
const maxHeaderBytes = 4096

// Server represents an instance of the REST API HTTP server
type Server struct {
	RootPath string

	cfg       config.Local
	log       logging.Logger
	sessionID uuid.UUID

	devLedger   *simledger.Ledger
	node        v1.LedgerNode
	coordinator *recovery.Coordinator
	rescuers    *rescuercache.Cache

	server   http.Server
	router   *echo.Echo
	addr     string
	pidFile  string
	netFile  string
	stopping chan struct{}
	cancel   context.CancelFunc
	ledgerCh chan error
}

// Initialize opens the ledger, builds the coordinator and prepares logging.
func (s *Server) Initialize(cfg config.Local) error {
	s.cfg = cfg
	s.sessionID = uuid.New()

	s.log = logging.Base().With("session", s.sessionID.String())
	s.log.SetLevel(logging.LevelFromConfig(cfg.BaseLoggerDebugLevel))
	if cfg.LogFormatJSON {
		s.log.SetJSONFormatter()
	}

	if cfg.LedgerEndpoint != "" {
		u, err := url.Parse(cfg.LedgerEndpoint)
		if err != nil {
			return fmt.Errorf("Initialize() invalid LedgerEndpoint %q: %w", cfg.LedgerEndpoint, err)
		}
		s.node = client.MakeRestClient(*u, cfg.LedgerAPIToken)
		s.log.Infof("reading the ledger at %s", u.Redacted())
	} else {
		l, err := simledger.Open(filepath.Join(s.RootPath, "ledger"), cfg.DevLedger.InMemory, simledger.ParamsFromConfig(cfg.DevLedger), s.log)
		if err != nil {
			return fmt.Errorf("Initialize() cannot open the development ledger: %w", err)
		}
		s.devLedger = l
		s.node = l
		s.log.Infof("running an embedded development ledger at round %d", l.Latest())
	}

	s.coordinator = recovery.MakeCoordinator(gateway.WithMetrics(s.node), s.log, recovery.OptionsFromConfig(cfg))
	s.rescuers = rescuercache.ForCoordinator(s.coordinator, cfg.RescuerScanCacheSize, cfg.RescuerScanCacheTTL)
	return nil
}

// SessionID identifies this daemon run in its logs.
func (s *Server) SessionID() uuid.UUID {
	return s.sessionID
}

// DevLedger returns the embedded development ledger, or nil when the daemon
// reads a remote node.
func (s *Server) DevLedger() *simledger.Ledger {
	return s.devLedger
}

// Addr returns the address the REST server listens on, once started.
func (s *Server) Addr() string {
	return s.addr
}

// helper handles startup of tcp listener
func makeListener(addr string) (net.Listener, error) {
	if addr == "" {
		addr = ":http"
	}
	return net.Listen("tcp", addr)
}

// Start begins serving the REST API and, for a development ledger, producing
// blocks. It returns once the listener is bound.
func (s *Server) Start() error {
	listener, err := makeListener(s.cfg.EndpointAddress)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", s.cfg.EndpointAddress, err)
	}
	s.addr = listener.Addr().String()
	s.stopping = make(chan struct{})

	var metricsHandler http.Handler
	if s.cfg.EnableMetrics {
		metricsHandler = metrics.DefaultRegistry().Handler()
	}
	handlers := &v1.Handlers{
		Node:          s.node,
		Coordinator:   s.coordinator,
		RescuerSource: s.rescuers,
		Log:           s.log,
		Shutdown:      s.stopping,
		QueryTimeout:  s.cfg.QueryTimeout,
	}
	s.router = apiServer.NewRouter(s.log, handlers, metricsHandler, s.cfg.APIToken, listener)
	s.server = http.Server{
		Addr:           s.addr,
		MaxHeaderBytes: maxHeaderBytes,
	}

	s.pidFile = filepath.Join(s.RootPath, "recoveryd.pid")
	s.netFile = filepath.Join(s.RootPath, "recoveryd.net")
	if err := os.WriteFile(s.pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
		listener.Close()
		return fmt.Errorf("pidfile error: %w", err)
	}
	if err := os.WriteFile(s.netFile, []byte(fmt.Sprintf("%s\n", s.addr)), 0644); err != nil {
		listener.Close()
		return fmt.Errorf("netfile error: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if s.devLedger != nil {
		s.ledgerCh = make(chan error, 1)
		interval := time.Duration(s.cfg.BlockTimeMillis) * time.Millisecond
		go func() {
			s.ledgerCh <- s.devLedger.Run(ctx, timers.MakeMonotonicClock(time.Now()), interval)
		}()
	}

	s.log.Infof("accepting REST requests on %s", s.addr)
	return nil
}

// Serve blocks serving requests until the server is stopped.
func (s *Server) Serve() error {
	err := s.router.StartServer(&s.server)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Run starts the server and blocks until it fails or the process is signalled.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	// Handle signals cleanly
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	signal.Ignore(syscall.SIGHUP)
	defer signal.Stop(c)

	fmt.Printf("recoveryd running and accepting requests over HTTP on %v. Press Ctrl-C to exit\n", s.addr)
	var err error
	select {
	case err = <-errChan:
		if err != nil {
			s.log.Warn(err)
		}
	case err = <-s.ledgerCh:
		s.log.Warnf("development ledger stopped: %v", err)
		s.ledgerCh = nil
	case sig := <-c:
		fmt.Printf("Exiting on %v\n", sig)
	}
	s.Stop()
	return err
}

// Stop shuts the REST server down, aborting pending ledger queries, and
// closes the ledger.
func (s *Server) Stop() {
	if s.stopping != nil {
		select {
		case <-s.stopping:
			return
		default:
		}
		// signal the rest api router that any pending commands should be aborted
		close(s.stopping)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.log.Error(err)
		}
		// the listener is only owned by the http server once Serve ran
		s.router.Listener.Close()
		if s.cancel != nil {
			s.cancel()
		}
		if s.ledgerCh != nil {
			<-s.ledgerCh
		}
		os.Remove(s.pidFile)
		os.Remove(s.netFile)
	}
	if s.devLedger != nil {
		if err := s.devLedger.Close(); err != nil {
			s.log.Warnf("closing the development ledger: %v", err)
		}
	}
	s.log.Info("recoveryd stopped")
}
