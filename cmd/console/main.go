// The clinic ops console: a headless dashboard client. It drives the full
// session lifecycle against the auth service — login, rehydration across
// runs, silent refresh, logout — persisting credentials in a local file the
// way the browser dashboard persists them in local storage.
//
// Usage:
//
//	console login -u <username>     prompt for a password and sign in
//	console status                  show session state and visible screens
//	console whoami                  revalidate the token and print identity
//	console refresh                 force a token rotation
//	console logout                  end the session locally and server-side
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/guard"
	"github.com/vitacare/clinic-ops/internal/core/nav"
	"github.com/vitacare/clinic-ops/internal/core/session"
	"github.com/vitacare/clinic-ops/internal/infrastructure/authapi"
	"github.com/vitacare/clinic-ops/internal/infrastructure/config"
	"github.com/vitacare/clinic-ops/internal/infrastructure/credstore"
	"github.com/vitacare/clinic-ops/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.LoadConsole()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr})

	if len(args) == 0 {
		return errors.New("usage: console <login|status|whoami|refresh|logout>")
	}
	cmd, rest := args[0], args[1:]

	path := cfg.CredentialsPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".clinic-ops", "credentials.json")
	}
	store, err := credstore.NewFileStore(path)
	if err != nil {
		return err
	}

	api := authapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, log)
	mgr := session.NewManager(api, store, log)

	ctx := context.Background()
	mgr.Initialize(ctx)

	switch cmd {
	case "login":
		return login(ctx, mgr, rest)
	case "status":
		return status(mgr)
	case "whoami":
		return whoami(ctx, mgr)
	case "refresh":
		return refresh(ctx, mgr)
	case "logout":
		mgr.Logout(ctx)
		fmt.Println("logged out")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func login(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("login requires -u <username>")
	}

	fmt.Fprint(os.Stderr, "password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	if err := mgr.Login(ctx, *username, password); err != nil {
		if errors.Is(err, domain.ErrNetworkFailure) {
			return fmt.Errorf("auth service unreachable: %w", err)
		}
		return err
	}

	sess := mgr.Snapshot()
	fmt.Printf("signed in as %s (%s)\n", sess.User.Name, sess.User.RoleName())
	return nil
}

func status(mgr *session.Manager) error {
	sess := mgr.Snapshot()
	if !sess.IsAuthenticated() {
		fmt.Println("not signed in")
		return nil
	}

	fmt.Printf("signed in as %s (%s)\n", sess.User.Name, sess.User.RoleName())
	fmt.Println("visible screens:")
	printEntries(nav.Filter(sess.Role()), sess, "  ")
	return nil
}

// printEntries renders the filtered navigation, re-checking each route
// against the guard. A "blocked" line here would mean the filter offered
// something the guard denies, which the tests rule out.
func printEntries(entries []nav.Entry, sess domain.Session, indent string) {
	for _, e := range entries {
		line := indent + e.Title
		if e.Route != "" {
			required, _ := nav.RolesFor(e.Route)
			if guard.Decide(sess, required...) != guard.Allow {
				line += " (blocked)"
			}
			line += "  " + e.Route
		}
		fmt.Println(line)
		printEntries(e.Children, sess, indent+"  ")
	}
}

func whoami(ctx context.Context, mgr *session.Manager) error {
	if err := mgr.FetchCurrentUser(ctx); err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			fmt.Println("not signed in")
			return nil
		}
		return err
	}
	sess := mgr.Snapshot()
	fmt.Printf("%s\t%s\t%s\n", sess.User.Username, sess.User.Name, sess.User.RoleName())
	return nil
}

func refresh(ctx context.Context, mgr *session.Manager) error {
	if err := mgr.RefreshSession(ctx); err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			fmt.Println("session expired, please sign in again")
			return nil
		}
		return err
	}
	fmt.Println("tokens rotated")
	return nil
}
