// Command tripctl is a developer tool for the TripMates API.
//
//	tripctl token --secret S --name Ana --age 25   print a bearer token
//	tripctl watch --trip ID --token T              follow a trip's chat
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/pkordes/tripmates/backend/internal/auth"
	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/poller"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: tripctl <token|watch> [flags]")
	}
	switch args[0] {
	case "token":
		return runToken(args[1:], out)
	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runToken(args []string, out io.Writer) error {
	var (
		secret string
		userID string
		name   string
		age    int
		ttl    time.Duration
	)
	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret (default $JWT_SECRET)")
	flagSet.StringVar(&userID, "user", "", "user id (default: random)")
	flagSet.StringVar(&name, "name", "", "display name")
	flagSet.IntVar(&age, "age", 0, "age in years")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if secret == "" {
		return errors.New("--secret or JWT_SECRET is required")
	}
	if name == "" {
		return errors.New("--name is required")
	}
	id := uuid.New()
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return fmt.Errorf("--user: %w", err)
		}
		id = parsed
	}

	tok, err := auth.NewTokens(secret).Issue(domain.Identity{UserID: id, DisplayName: name, Age: age}, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

func runWatch(ctx context.Context, args []string, out io.Writer) error {
	var (
		baseURL  string
		token    string
		tripID   string
		after    int64
		interval time.Duration
	)
	flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flagSet.StringVar(&baseURL, "url", "http://localhost:8080", "API base URL")
	flagSet.StringVar(&token, "token", os.Getenv("TRIPMATES_TOKEN"), "bearer token (default $TRIPMATES_TOKEN)")
	flagSet.StringVar(&tripID, "trip", "", "trip id")
	flagSet.Int64Var(&after, "after", 0, "start after this sequence number")
	flagSet.DurationVar(&interval, "interval", poller.DefaultInterval, "poll interval")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	trip, err := uuid.Parse(tripID)
	if err != nil {
		return fmt.Errorf("--trip: %w", err)
	}
	if token == "" {
		return errors.New("--token or TRIPMATES_TOKEN is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	fetcher := poller.NewHTTPFetcher(baseURL, token, &http.Client{Timeout: 10 * time.Second})
	p := poller.New(fetcher, trip,
		poller.WithInterval(interval),
		poller.WithCursor(after),
		poller.WithLogger(logger),
	)

	err = p.Run(ctx, func(msgs []domain.ChatMessage) {
		for _, m := range msgs {
			fmt.Fprintf(out, "#%d %s %s: %s\n", m.Seq, m.CreatedAt.Local().Format(time.Kitchen), m.AuthorName, m.Text)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
