package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spencer-p/xbtdash/pkg/handlers"
	"github.com/spencer-p/xbtdash/pkg/log"
	"github.com/spencer-p/xbtdash/pkg/profile"
)

type Config struct {
	Port                string        `default:"8080"`
	Prefix              string        `default:"/"`
	Debug               bool          `default:"false"`
	DatabaseDSN         string        `split_words:"true"`
	CacheTTL            time.Duration `split_words:"true" default:"23h"`
	MaxInflectionPoints int           `split_words:"true" default:"100"`
}

func main() {
	var env Config
	if err := envconfig.Process("xbtdash", &env); err != nil {
		log.Fatalf("Failed to process config: %v", err)
	}
	if err := log.Init(env.Debug); err != nil {
		log.Fatalf("%v", err)
	}
	defer log.Sync()

	store, err := openStore(env)
	if err != nil {
		log.Fatalf("Failed to open cast archive: %v", err)
	}

	r := mux.NewRouter().StrictSlash(true)
	s := r.PathPrefix(env.Prefix).Subrouter()

	handlers.Register(s, store, handlers.Options{
		CacheTTL:            env.CacheTTL,
		MaxInflectionPoints: env.MaxInflectionPoints,
	})
	s.HandleFunc("/", handleIndex)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Infof("Listening and serving on %s/%s", srv.Addr, env.Prefix[1:])
	log.Infof("Inflection points capped at %d (default %d)", env.MaxInflectionPoints, profile.DefaultMaxInflectionPoints)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("%v", err)
	}
}
