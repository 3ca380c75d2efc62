package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/oaiiae/contacts-api/cli/api"
	"github.com/oaiiae/contacts-api/cli/logger"
)

const title = "Contacts API"

// set at build time with -ldflags "-X main.version=..."
var (
	version  = "dev"
	revision = "unknown"
	created  = "unknown"
)

// Options for the CLI. Pass `--port` or set the `SERVICE_PORT` env var.
type Options struct {
	logger.Options
	api.ServerOptions
	api.RouterOptions
	api.StoreOptions
	api.AuthOptions
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		log := logger.New(&options.Options)
		ctx := context.Background()

		store, err := api.NewStore(ctx, &options.StoreOptions, log)
		if err != nil {
			log.Error("could not open the store", "err", err)
			os.Exit(1)
		}
		tokens, users, err := api.NewAuth(ctx, &options.AuthOptions, log)
		if err != nil {
			log.Error("could not set up authentication", "err", err)
			os.Exit(1)
		}

		srv := api.NewServer(&options.ServerOptions,
			api.NewRouter(&options.RouterOptions, title, version, revision, created,
				&api.Backends{
					Contacts: store.Contacts,
					Users:    users,
					Tokens:   tokens,
					Ping:     store.Ping,
				},
				log,
			),
			log,
		)

		hooks.OnStart(func() {
			log.Info("server listening", "addr", srv.Addr, "version", version, "driver", options.Driver)
			err := srv.ListenAndServe()
			if !errors.Is(err, http.ErrServerClosed) {
				log.Error("failed to listen and serve", "err", err)
			} else {
				log.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				log.Warn("could not shutdown the server", "err", err)
			}
			if err := store.Close(); err != nil {
				log.Warn("could not close the store", "err", err)
			}
		})
	})
	cli.Run()
}
