package main

import (
	"fmt"
	"net/http"

	"github.com/spencer-p/xbtdash/pkg/data"
	"github.com/spencer-p/xbtdash/pkg/log"
)

// openStore archives casts in postgres when a DSN is configured and in
// memory otherwise.
func openStore(env Config) (data.Store, error) {
	if env.DatabaseDSN == "" {
		log.Warnf("No database configured, casts are kept in memory")
		return data.NewMemoryStore(), nil
	}
	db, err := data.OpenPostgres(env.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return data.NewGormStore(db)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "xbtdash: POST casts to api/v1/casts\n")
}
