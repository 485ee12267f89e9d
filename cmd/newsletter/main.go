// cmd/newsletter/main.go
//
// Newsletter service – process entry point.
//
// Commands
// --------
//
//  serve (default)
//
//     1. Console bootstrap logger, so config errors are visible.
//     2. Resolve settings (base.yaml → <env>.yaml → .env → APP_* vars).
//     3. Swap in the configured zap + lumberjack logger.
//     4. Build the lazy pool from the database-level descriptor.  Nothing
//        dials until the first submission.
//     5. Bind application.host:port and hand the server to an errgroup,
//        next to the optional metrics listener and a signal watcher.
//
//  create-db [--name NAME]
//
//     Connects with the server-level descriptor (no database selected),
//     pings, and issues CREATE DATABASE.  Any connection failure is fatal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sangkhuudev/newsletter/internal/config"
	"github.com/sangkhuudev/newsletter/internal/database"
	"github.com/sangkhuudev/newsletter/internal/logger"
	"github.com/sangkhuudev/newsletter/internal/server"
)

const shutdownGrace = 15 * time.Second

func main() {
	app := kingpin.New("newsletter", "Newsletter subscription ingestion service.")
	app.HelpFlag.Short('h')

	serveCmd := app.Command("serve", "Run the HTTP service.").Default()
	createCmd := app.Command("create-db", "Create the configured database on the server.")
	dbName := createCmd.Flag("name", "Database to create (defaults to database.database_name).").String()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	boot := logger.Bootstrap()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load(ctx)
	if err != nil {
		boot.Fatalw("failed to load configuration", "err", err)
	}

	log, err := logger.New(settings.Log)
	if err != nil {
		boot.Fatalw("failed to start logger", "err", err)
	}
	defer func() { _ = log.Sync() }()

	switch cmd {
	case serveCmd.FullCommand():
		err = serve(ctx, settings, log)
	case createCmd.FullCommand():
		if *dbName != "" {
			settings = settings.WithDatabaseName(*dbName)
		}
		err = createDatabase(ctx, settings, log)
	}
	if err != nil {
		log.Fatalw("exiting", "command", cmd, "err", err)
	}
}

func serve(ctx context.Context, s *config.Settings, log *zap.SugaredLogger) error {
	desc := database.DatabaseDescriptor(s.Database)
	db, err := database.Open(desc, database.OptionsFrom(s.Database))
	if err != nil {
		return fmt.Errorf("build pool: %w", err)
	}
	defer db.Close()
	log.Infow("pool ready (lazy)", "db", desc.String())

	ln, err := net.Listen("tcp", hostPort(s.Application.Host, s.Application.Port))
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	servers := []*server.Server{server.New(ln, db, log)}

	if s.Metrics.Enabled {
		mln, err := net.Listen("tcp", hostPort(s.Metrics.Host, s.Metrics.Port))
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("bind metrics: %w", err)
		}
		servers = append(servers, server.NewMetrics(mln, log))
	}

	return run(ctx, servers, log, shutdownGrace)
}

// run serves every server until ctx ends or one Serve fails, then shuts all
// of them down, allowing grace for in-flight requests.  The first error wins.
func run(ctx context.Context, servers []*server.Server, log *zap.SugaredLogger, grace time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(srv.Serve)
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down", "cause", context.Cause(gctx))

		shCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shCtx))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func createDatabase(ctx context.Context, s *config.Settings, log *zap.SugaredLogger) error {
	desc := database.ServerDescriptor(s.Database)
	db, err := database.Connect(ctx, desc, database.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.CreateDatabase(ctx, db, s.Database.DatabaseName); err != nil {
		return fmt.Errorf("create database %q: %w", s.Database.DatabaseName, err)
	}
	log.Infow("database created", "name", s.Database.DatabaseName, "server", desc.String())
	return nil
}

func hostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
