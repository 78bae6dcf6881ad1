package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"kyc-verifier/api/internal/app"
	"kyc-verifier/api/internal/config"
	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/logging"
)

func main() {
	var (
		strategy = flag.String("strategy", "", "extraction strategy: text-relay (ocr) or direct-vision (llm); defaults to DEFAULT_STRATEGY")
		timeout  = flag.Duration("timeout", 180*time.Second, "deadline for the whole run")
		claim    domain.UserClaim
	)
	flag.StringVar(&claim.FirstName, "first-name", "", "claimed first name")
	flag.StringVar(&claim.LastName, "last-name", "", "claimed last name")
	flag.StringVar(&claim.StreetName, "street-name", "", "claimed street name")
	flag.StringVar(&claim.StreetNumber, "street-number", "", "claimed street number")
	flag.StringVar(&claim.PostalCode, "postal-code", "", "claimed postal code")
	flag.StringVar(&claim.City, "city", "", "claimed city")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: kyc-verify [flags] <image>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0), *strategy, *timeout, claim); err != nil {
		fmt.Fprintln(os.Stderr, "kyc-verify:", err)
		os.Exit(1)
	}
}

func run(path, strategy string, timeout time.Duration, claim domain.UserClaim) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger("warn")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strategy == "" {
		strategy = cfg.DefaultStrategy
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	fields, err := a.Pipeline.ProcessDocument(ctx, image, strategy)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fields); err != nil {
		return err
	}

	if claim == (domain.UserClaim{}) {
		return nil
	}
	res, err := a.Pipeline.VerifyIdentity(claim, &fields)
	if err != nil {
		return err
	}
	return enc.Encode(res)
}
