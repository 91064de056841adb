package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/event"
	logsvc "github.com/trezcool/agenda/services/logger"
	"github.com/trezcool/agenda/storage"
	"github.com/trezcool/agenda/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	ctx := context.Background()

	cli := commandLine{conf: conf, logger: logger, out: os.Stdout}

	// migrations run on a bare connection: the store itself migrates up when opened
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if conf.Storage.Backend == storage.Postgres {
			db, err := database.Connect(ctx, conf)
			errAndDie(logger, err)
			defer db.Close()
			cli.db = db.DB
		}
	} else {
		store, err := storage.Open(ctx, conf)
		errAndDie(logger, err)
		defer func() { _ = store.Close(ctx) }()
		cli.svc = event.NewService(store.Repo, event.NewValidator(), conf)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin: "+err.Error(), err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
