// Command bdiff is BDiff's CLI front-end: a single subcommand taking two
// file paths and printing the semantic edit script between them.
// Grounded on the teacher's main.go flag-registration style
// (stringVar/defaultEnv reading BDIFF_* environment variables as flag
// defaults), generalized to the full options table.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bdiffgo/bdiff/pkg/bdiff"
	"github.com/bdiffgo/bdiff/pkg/engine"
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

func envName(fg string) string {
	return "BDIFF_" + strings.ReplaceAll(strings.ToUpper(fg), "-", "_")
}

func stringVar(p *string, fg, defaultValue, usage string) {
	ev := envName(fg)
	flag.StringVar(p, fg, defaultEnv(ev, defaultValue), usage+". env var: "+ev)
}

func boolVar(p *bool, fg string, defaultValue bool, usage string) {
	ev := envName(fg)
	def := defaultValue
	if v, ok := os.LookupEnv(ev); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			def = b
		}
	}
	flag.BoolVar(p, fg, def, usage+". env var: "+ev)
}

func intVar(p *int, fg string, defaultValue int, usage string) {
	ev := envName(fg)
	def := defaultValue
	if v, ok := os.LookupEnv(ev); ok {
		if n, err := strconv.Atoi(v); err == nil {
			def = n
		}
	}
	flag.IntVar(p, fg, def, usage+". env var: "+ev)
}

func float64Var(p *float64, fg string, defaultValue float64, usage string) {
	ev := envName(fg)
	def := defaultValue
	if v, ok := os.LookupEnv(ev); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			def = f
		}
	}
	flag.Float64Var(p, fg, def, usage+". env var: "+ev)
}

func main() {
	os.Exit(run())
}

func run() int {
	def := bdiff.DefaultOptions()

	var (
		jsonOutput bool
		cacheFile  string
		algorithm  string
	)

	stringVar(&algorithm, "diff-algorithm", string(def.DiffAlgorithm), "raw differ to use: Histogram or Myers")
	intVar(&def.IndentTabsSize, "indent-tabs-size", def.IndentTabsSize, "tab width in spaces for indent calc")
	intVar(&def.MinMoveBlockLength, "min-move-block-length", def.MinMoveBlockLength, "minimum pure length for moves")
	intVar(&def.MinCopyBlockLength, "min-copy-block-length", def.MinCopyBlockLength, "minimum pure length for copies")
	intVar(&def.CtxLength, "ctx-length", def.CtxLength, "half-window for line-level context similarity")
	float64Var(&def.LineSimWeight, "line-sim-weight", def.LineSimWeight, "weight of content sim in synthetic score")
	float64Var(&def.SimThreshold, "sim-threshold", def.SimThreshold, "acceptance threshold for updates")
	intVar(&def.MaxMergeLines, "max-merge-lines", def.MaxMergeLines, "cap on merge arity")
	intVar(&def.MaxSplitLines, "max-split-lines", def.MaxSplitLines, "cap on split arity")
	boolVar(&def.PureMvBlockContainPunc, "pure-mv-block-contain-punc", def.PureMvBlockContainPunc, "count punctuation-only lines in move pure length")
	boolVar(&def.PureCpBlockContainPunc, "pure-cp-block-contain-punc", def.PureCpBlockContainPunc, "same for copy")
	boolVar(&def.CountMvBlockUpdate, "count-mv-block-update", def.CountMvBlockUpdate, "permit intra-move line updates")
	boolVar(&def.CountCpBlockUpdate, "count-cp-block-update", def.CountCpBlockUpdate, "permit intra-copy line updates")
	boolVar(&def.IdentifyMove, "identify-move", def.IdentifyMove, "enable move detection")
	boolVar(&def.IdentifyCopy, "identify-copy", def.IdentifyCopy, "enable copy detection")
	boolVar(&def.IdentifyUpdate, "identify-update", def.IdentifyUpdate, "enable single-line update detection")
	boolVar(&def.IdentifySplit, "identify-split", def.IdentifySplit, "enable split detection")
	boolVar(&def.IdentifyMerge, "identify-merge", def.IdentifyMerge, "enable merge detection")
	boolVar(&jsonOutput, "json", false, "print the edit script as JSON instead of pretty-printed text")
	stringVar(&cacheFile, "cache-file", "", "bbolt file memoizing results across invocations; empty disables caching")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <src> <dest>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return 2
	}
	srcPath, destPath := flag.Arg(0), flag.Arg(1)
	def.DiffAlgorithm = rawdiff.Algorithm(strings.ToLower(algorithm))

	records, err := runDiff(srcPath, destPath, def, cacheFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bdiff:", err)
		return 1
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return boolToExit(enc.Encode(records) == nil)
	}

	for _, rec := range records {
		fmt.Println(rec.String())
	}
	return 0
}

func boolToExit(ok bool) int {
	if ok {
		return 0
	}
	return 1
}

// runDiff computes the edit script for srcPath/destPath, memoizing the
// call through a bbolt-backed cache when cacheFile is non-empty.
func runDiff(srcPath, destPath string, opts bdiff.Options, cacheFile string) ([]engine.EditRecord, error) {
	if cacheFile == "" {
		return bdiff.Run(srcPath, destPath, nil, nil, opts)
	}

	db, err := bbolt.Open(cacheFile, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer db.Close()

	srcBytes, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", srcPath, errors.Join(bdiff.ErrInputMissing, err))
	}
	destBytes, err := os.ReadFile(destPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", destPath, errors.Join(bdiff.ErrInputMissing, err))
	}

	cache := &resultcache.Cache{DB: db}
	return resultcache.Run(cache, srcPath, destPath, string(srcBytes), string(destBytes), opts)
}
