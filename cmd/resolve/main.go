package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	appErr "github.com/ragops/planner/pkg/errors"
	"github.com/ragops/planner/pkg/logger"

	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/planner"
)

func main() {
	var (
		format   = flag.String("format", "json", "output format: json or env")
		outPath  = flag.String("out", "", "write output to file instead of stdout")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	log, err := logger.Init(*logLevel, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	p, err := params.FromEnv()
	if err != nil {
		fail(log, err)
	}
	p.Normalize()

	plan, err := planner.Resolve(p)
	if err != nil {
		fail(log, err)
	}

	var out []byte
	switch *format {
	case "json":
		out, err = json.MarshalIndent(plan, "", "  ")
		if err != nil {
			fail(log, err)
		}
		out = append(out, '\n')
	case "env":
		out = []byte(plan.RenderEnv())
	default:
		fail(log, appErr.Newf(appErr.CodeValidation, "unknown format %q", *format))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			fail(log, err)
		}
		return
	}
	os.Stdout.Write(out)
}

func fail(log *zap.Logger, err error) {
	log.Error("resolve failed", zap.Error(err))
	os.Exit(1)
}
