package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/rivo/tview"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/config"
	"github.com/reviewdeck/reviewdeck/internal/db"
	"github.com/reviewdeck/reviewdeck/internal/services"
	"github.com/reviewdeck/reviewdeck/pkg/auth"
)

// App encapsulates the terminal UI and the review deck services
type App struct {
	*tview.Application
	Config *config.Config
	Keys   config.KeyBindings

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex

	// Core services
	state          *services.ViewStateMachine
	scheduler      *services.FetchScheduler
	uploadService  services.UploadService
	exportService  services.ExportService
	historyService services.HistoryService
	session        *auth.SessionConfig
	dbStore        *db.Store

	// Views
	pages       *tview.Pages
	layout      *tview.Flex
	table       *tview.Table
	searchInput *tview.InputField
	titleView   *tview.TextView
	statusView  *tview.TextView

	currentTheme *config.ColorsConfig
	errorHandler *ErrorHandler

	// Debug logging
	logger  *log.Logger
	logFile *os.File

	// Set by the entrypoint; called after a forced logout so the caller
	// can fall back to the login prompt.
	OnLogout func()
}

// NewApp creates a new application instance with all services wired
func NewApp(cfg *config.Config, client *api.Client, session *auth.SessionConfig, store *db.Store, exportDir string) *App {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		Application: tview.NewApplication(),
		Config:      cfg,
		Keys:        cfg.Keys,
		ctx:         ctx,
		cancel:      cancel,
		session:     session,
		dbStore:     store,
	}

	app.initLogger()
	app.loadTheme()

	state := services.NewViewStateMachine()
	repo := services.NewFileRepository(client)
	scheduler := services.NewFetchScheduler(ctx, repo, state, cfg.DebounceInterval())

	uploadSvc := services.NewUploadService(repo, state)
	exportSvc := services.NewExportService(repo, state, exportDir)

	var historySvc services.HistoryService
	if store != nil {
		historySvc = services.NewHistoryService(db.NewHistoryStore(store))
		scheduler.SetHistory(historySvc)
	}

	if app.logger != nil {
		client.SetLogger(app.logger)
		scheduler.SetLogger(app.logger)
		uploadSvc.SetLogger(app.logger)
		exportSvc.SetLogger(app.logger)
	}

	app.state = state
	app.scheduler = scheduler
	app.uploadService = uploadSvc
	app.exportService = exportSvc
	app.historyService = historySvc

	app.initViews()
	app.errorHandler = NewErrorHandler(app.Application, app, app.statusView, app.logger)

	scheduler.SetCallbacks(app.onPageCommitted, app.onFetchError)

	return app
}

// initLogger opens the debug log file if one is configured
func (a *App) initLogger() {
	path := a.Config.LogFile
	if path == "" {
		return
	}
	if dir := filepath.Dir(path); dir != "" {
		_ = os.MkdirAll(dir, 0755)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	a.logFile = f
	a.logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
}

// loadTheme loads the configured theme, falling back to defaults
func (a *App) loadTheme() {
	a.currentTheme = config.DefaultColors()

	themeDir := a.Config.Layout.CustomThemeDir
	if themeDir == "" {
		themeDir = filepath.Join(filepath.Dir(config.DefaultConfigPath()), "themes")
	}

	loader := config.NewThemeLoader(themeDir)
	_ = loader.CreateDefaultTheme()

	name := a.Config.Layout.CurrentTheme
	if name == "" {
		return
	}
	theme, err := loader.LoadThemeFromFile(name + ".yaml")
	if err != nil {
		if a.logger != nil {
			a.logger.Printf("theme %q not loaded: %v", name, err)
		}
		return
	}
	if err := loader.ValidateTheme(theme); err != nil {
		if a.logger != nil {
			a.logger.Printf("theme %q invalid: %v", name, err)
		}
		return
	}
	a.currentTheme = theme
}

// ReloadConfig applies a configuration change to the running app. Key
// bindings, theme and the status baseline take effect immediately;
// transport settings (base_url, request timeout) apply at the next sign
// in. Safe to call from any goroutine.
func (a *App) ReloadConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	a.mu.Lock()
	a.Config = cfg
	a.Keys = cfg.Keys
	a.mu.Unlock()

	a.loadTheme()

	a.QueueUpdateDraw(func() {
		snap := a.state.Snapshot()
		a.renderTable(snap)
		a.refreshTitle(snap)
		a.errorHandler.refreshStatusDisplay()
	})

	if a.logger != nil {
		a.logger.Printf("configuration reloaded from disk")
	}
}

// Run starts the application event loop
func (a *App) Run() error {
	a.bindKeys()

	// Initial browse fetch; no debounce needed but reusing the scheduler
	// keeps a single dispatch path.
	a.scheduler.ScheduleCurrent()

	a.SetRoot(a.pages, true)
	a.EnableMouse(false)
	defer a.cleanup()

	return a.Application.Run()
}

// Stop terminates the application
func (a *App) Stop() {
	a.Application.Stop()
}

func (a *App) cleanup() {
	a.scheduler.Stop()
	a.cancel()
	if a.dbStore != nil {
		_ = a.dbStore.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// onPageCommitted runs on the scheduler's goroutine after a fresh page
// landed in the state machine.
func (a *App) onPageCommitted(snap services.ViewState) {
	a.QueueUpdateDraw(func() {
		a.renderTable(snap)
		a.refreshTitle(snap)
	})
}

// onFetchError surfaces fetch failures; auth failures force a logout.
func (a *App) onFetchError(err error) {
	if services.IsAuthError(err) {
		a.forceLogout()
		return
	}
	a.errorHandler.HandleError(a.ctx, err, "Could not load records")
}

// forceLogout drops the local session and hands control back to the
// entrypoint. Runs on any goroutine.
func (a *App) forceLogout() {
	if a.logger != nil {
		a.logger.Printf("session rejected by server, logging out")
	}
	_ = a.session.RemoveToken()
	a.Application.Stop()
	if a.OnLogout != nil {
		a.OnLogout()
	}
}

// logout signs out explicitly via the menu key
func (a *App) logout() {
	token, _ := a.session.LoadToken()
	go func() {
		if err := a.session.SignOut(a.ctx, token); err != nil && a.logger != nil {
			a.logger.Printf("sign out: %v", err)
		}
		a.QueueUpdateDraw(func() {})
		a.Application.Stop()
		if a.OnLogout != nil {
			a.OnLogout()
		}
	}()
}

// setQuery pushes a new query into the state machine and schedules the
// debounced fetch for it.
func (a *App) setQuery(query string) {
	a.state.SetQuery(query)
	snap := a.state.Snapshot()
	a.refreshTitle(snap)
	a.scheduler.Schedule(snap.Query, snap.Page, snap.Mode)
}

// setPage moves the pagination cursor and schedules a fetch
func (a *App) setPage(page int) {
	a.state.SetPage(page)
	snap := a.state.Snapshot()
	a.refreshTitle(snap)
	a.scheduler.Schedule(snap.Query, snap.Page, snap.Mode)
}

func (a *App) nextPage() {
	snap := a.state.Snapshot()
	if snap.Page < snap.TotalPages {
		a.setPage(snap.Page + 1)
	}
}

func (a *App) prevPage() {
	snap := a.state.Snapshot()
	if snap.Page > 1 {
		a.setPage(snap.Page - 1)
	}
}

// clearUpload leaves the uploaded view and returns to browsing
func (a *App) clearUpload() {
	snap := a.state.Snapshot()
	if !snap.Uploaded {
		return
	}
	a.state.Reset()
	a.scheduler.ScheduleCurrent()
	a.errorHandler.ShowInfo(a.ctx, "Returned to browsing")
}

// statusBaseline returns the idle status bar contents
func (a *App) statusBaseline() string {
	return fmt.Sprintf("ReviewDeck • %s to search • %s to upload • %s to export • %s for help",
		a.Keys.Search, a.Keys.Upload, a.Keys.Export, a.Keys.Help)
}
