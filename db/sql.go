package db

import (
	"database/sql"
	"log"
	"sync"

	"github.com/go-sql-driver/mysql"

	"github.com/0xzenith/zenith-go/config"
)

var dataDb *sql.DB
var dataDBOnce = &sync.Once{}

func GetDataDBConnection(cfg *config.Config) *sql.DB {
	dataDBOnce.Do(func() {
		dsn := mysql.Config{
			User:      cfg.MySQLUser,
			Net:       "tcp",
			Addr:      cfg.MySQLAddr,
			DBName:    cfg.MySQLDB,
			ParseTime: true,
		}
		var err error
		dataDb, err = sql.Open("mysql", dsn.FormatDSN())
		if err != nil {
			log.Fatal(err)
		}

		pingErr := dataDb.Ping()
		if pingErr != nil {
			log.Fatal(pingErr)
		}
	})

	return dataDb
}
