package main

import (
	"log"
	"os"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/user"
	emailsvc "github.com/edulabbr/oratoria/services/email"
	"github.com/edulabbr/oratoria/storage/database"
	sqlxrepos "github.com/edulabbr/oratoria/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:     db.DB,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db), emailsvc.NewConsoleService(), conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
