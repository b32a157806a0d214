package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobtracker/internal/app"
	"jobtracker/internal/leads"

	"go.uber.org/zap"
)

func main() {
	owner := flag.String("owner", "", "username that owns the imported leads")
	feedURL := flag.String("url", "", "RSS or Atom feed URL")
	flag.Parse()

	if *owner == "" || *feedURL == "" {
		fmt.Fprintln(os.Stderr, "usage: import-rss -owner <username> -url <feed url>")
		os.Exit(2)
	}

	cfg, log := app.MustConfig()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	user, err := store.GetUserByUsername(ctx, *owner)
	if err != nil {
		log.Fatal("failed to find owner", zap.String("username", *owner), zap.Error(err))
	}

	importer := leads.NewImporter(store, log, leads.WithTimeout(cfg.FeedTimeout))

	res, err := importer.ImportURL(ctx, user.ID, *feedURL)
	if err != nil {
		log.Fatal("feed import failed", zap.String("url", *feedURL), zap.Error(err))
	}

	fmt.Printf("items: %d, created: %d, duplicates: %d, skipped: %d\n",
		res.Items, res.Created, res.Duplicates, res.Skipped)
}
