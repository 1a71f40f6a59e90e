package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/hmcts/fact-admin/internal/config"
	"github.com/hmcts/fact-admin/internal/migrations"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		log.Fatalf("cannot open database, %v", err)
	}
	defer db.Close()

	if err = db.PingContext(ctx); err != nil {
		log.Fatalf("cannot reach database, %v", err)
	}

	applied, err := migrations.Apply(ctx, db)
	if err != nil {
		log.Fatalf("migration failed, %v", err)
	}
	log.WithField("applied", applied).Info("migrations completed")
}
