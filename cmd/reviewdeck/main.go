package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/config"
	"github.com/reviewdeck/reviewdeck/internal/db"
	"github.com/reviewdeck/reviewdeck/internal/tui"
	"github.com/reviewdeck/reviewdeck/internal/version"
	"github.com/reviewdeck/reviewdeck/pkg/auth"
)

func main() {
	// Essential command line flags only (GNU-style double dashes)
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/reviewdeck/config.json)")
	baseURLFlag := flag.String("base-url", "", "Review service base URL (overrides config file)")
	loginFlag := flag.Bool("login", false, "Force a fresh sign in even when a session token exists")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # Run with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --login                           # Discard the cached session and sign in again\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --base-url http://deck.local:8000 # Point at a different server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config custom.json              # Use custom configuration\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  REVIEWDECK_CONFIG    Override default config file path\n")
		fmt.Fprintf(os.Stderr, "  REVIEWDECK_BASE_URL  Override the service base URL\n")
		fmt.Fprintf(os.Stderr, "\nFor all other settings (keys, theme, debounce), edit the config file.\n")
	}

	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	manager := config.NewManager()
	configPath := getConfigPath(*configPathFlag)
	if err := manager.LoadFromFile(configPath); err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		manager.LoadFromDefaults()
	}
	cfg := manager.GetConfig()

	if *baseURLFlag != "" {
		cfg.BaseURL = *baseURLFlag
	} else if env := os.Getenv("REVIEWDECK_BASE_URL"); env != "" {
		cfg.BaseURL = env
	}

	tokenPath, historyPath, exportDir := manager.GetPaths()
	session := auth.NewSessionConfig(cfg.BaseURL, tokenPath)

	ctx := context.Background()
	forceLogin := *loginFlag

	// Hot-reload config file edits into whichever app instance is running.
	var (
		appMu      sync.Mutex
		currentApp *tui.App
	)
	manager.AddWatcher(func(updated *config.Config) {
		appMu.Lock()
		app := currentApp
		appMu.Unlock()
		if app != nil {
			app.ReloadConfig(updated)
		}
	})
	if err := manager.Watch(ctx); err != nil {
		log.Printf("Warning: configuration file watch disabled: %v", err)
	} else {
		defer manager.StopWatching()
	}

	for {
		token, err := ensureToken(ctx, session, forceLogin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sign in failed: %v\n", err)
			os.Exit(1)
		}
		forceLogin = false

		client := api.NewClient(cfg.BaseURL, token.Value, cfg.GetRequestTimeout())

		// Search history is optional; the app degrades gracefully without it.
		var store *db.Store
		if historyPath != "" {
			if dir := filepath.Dir(historyPath); dir != "" {
				_ = os.MkdirAll(dir, 0755)
			}
			if st, err := db.Open(ctx, historyPath); err == nil {
				store = st
			} else {
				log.Printf("Warning: could not open search history store: %v", err)
			}
		}

		app := tui.NewApp(cfg, client, session, store, exportDir)
		appMu.Lock()
		currentApp = app
		appMu.Unlock()

		relogin := false
		app.OnLogout = func() { relogin = true }

		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
			os.Exit(1)
		}
		if !relogin {
			return
		}
	}
}

// ensureToken returns the cached session token, prompting for credentials
// when there is none or a fresh login was requested.
func ensureToken(ctx context.Context, session *auth.SessionConfig, forceLogin bool) (*auth.Token, error) {
	if !forceLogin {
		if token, err := session.LoadToken(); err == nil {
			return token, nil
		}
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}

	return session.SignIn(ctx, strings.TrimSpace(email), strings.TrimSpace(password))
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable REVIEWDECK_CONFIG
// 3. Default path ~/.config/reviewdeck/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("REVIEWDECK_CONFIG"); envPath != "" {
		return expandPath(envPath)
	}

	return config.DefaultConfigPath()
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}
