// Command storectl seeds, exports and imports a storefront profile.
//
//	storectl init
//	storectl whoami
//	storectl export [-o dump.json]
//	storectl import [-replace] dump.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/blackshot-store/internal/config"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/logging"
	"github.com/example/blackshot-store/internal/seed"
	"github.com/example/blackshot-store/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat).With("service", "storectl")
	ctx := logging.IntoContext(context.Background(), logger)

	s, err := store.Open(ctx, store.OpenConfig{
		Driver:      cfg.StoreDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		RedisURL:    cfg.RedisURL,
		Profile:     cfg.Profile,
		Quota:       cfg.QuotaBytes,
	})
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "init":
		err = runInit(ctx, s)
	case "whoami":
		err = runWhoami(ctx, s)
	case "export":
		err = runExport(ctx, s, args)
	case "import":
		err = runImport(ctx, s, args)
	default:
		usage()
		s.Close()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		s.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: storectl init | whoami | export [-o file] | import [-replace] file")
}

func runInit(ctx context.Context, s *store.Store) error {
	written, err := seed.Init(ctx, s, ident.Default)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("profile initialized", "written", written)
	return nil
}

// runWhoami prints the customer last signed in on the profile
func runWhoami(ctx context.Context, s *store.Store) error {
	customers := session.NewCustomerAuth(user.NewService(s, nil, ident.Default), s)
	u, ok, err := customers.Current(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no customer signed in")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", u.Name, u.Email, u.ID)
	return nil
}

func runExport(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "write to file instead of stdout")
	fs.Parse(args)

	dump, err := store.Export(ctx, s)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("profile exported", "keys", len(dump))
	return nil
}

func runImport(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	replace := fs.Bool("replace", false, "remove keys that are not in the dump")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("import needs exactly one file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	var dump map[string]string
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("dump must be a JSON object of strings: %w", err)
	}

	if err := store.Import(ctx, s, dump, *replace); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("profile imported", "keys", len(dump), "replace", *replace)
	return nil
}
