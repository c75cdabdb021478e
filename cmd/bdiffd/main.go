// Command bdiffd is BDiff's optional HTTP front-end: a chi-routed server
// exposing bdiff.Run over multipart upload. Wired with the same flag/env
// style as cmd/bdiff.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bdiffgo/bdiff/pkg/bdiff"
	"github.com/bdiffgo/bdiff/pkg/httpapi"
	"github.com/bdiffgo/bdiff/pkg/rawdiff"
	"github.com/bdiffgo/bdiff/pkg/resultcache"
	"go.etcd.io/bbolt"
)

func defaultEnv(s, def string) string {
	if v, ok := os.LookupEnv(s); ok {
		return v
	}
	return def
}

func stringVar(p *string, fg, defaultValue, usage string) {
	ev := "BDIFFD_" + strings.ReplaceAll(strings.ToUpper(fg), "-", "_")
	flag.StringVar(p, fg, defaultEnv(ev, defaultValue), usage+". env var: "+ev)
}

type optsType struct {
	listenAddr string
	publicURL  string
	dbFile     string
	algorithm  string
}

func main() {
	var opts optsType
	stringVar(&opts.listenAddr, "listen-addr", ":18844", "listen address for the web server")
	stringVar(&opts.publicURL, "public-url", "localhost:18844", "url for the server, used in the curl example")
	stringVar(&opts.dbFile, "db-file", "data/bdiffd.bolt", "bbolt file for the result cache and per-address quota")
	defOpts := bdiff.DefaultOptions()
	stringVar(&opts.algorithm, "diff-algorithm", string(defOpts.DiffAlgorithm), "raw differ to use: Histogram or Myers")
	flag.Parse()

	db, err := bbolt.Open(opts.dbFile, 0o600, nil)
	if err != nil {
		panic(fmt.Errorf("db open error: %w", err))
	}

	defOpts.DiffAlgorithm = rawdiff.Algorithm(strings.ToLower(opts.algorithm))

	srv := &httpapi.Server{
		PublicURL: opts.publicURL,
		Cache:     &resultcache.Cache{DB: db},
		Options:   defOpts,
		Output:    os.Stdout,
	}

	fmt.Println("listening on", opts.listenAddr)
	panic(http.ListenAndServe(opts.listenAddr, srv.Router()))
}
