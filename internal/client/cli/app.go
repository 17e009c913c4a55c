package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/postkeeper/internal/client/client"
	"github.com/dmitrijs2005/postkeeper/internal/client/config"
	"github.com/dmitrijs2005/postkeeper/internal/client/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single connectivity check.
const pingTimeout = 3 * time.Second

// api is the part of client.Client the CLI uses.
type api interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, name, email string, password []byte) (int64, error)
	Login(ctx context.Context, email string, password []byte) error
	SetToken(token string)
	Profile(ctx context.Context) (*models.Profile, error)
	UpdateName(ctx context.Context, name string) error
	CreatePost(ctx context.Context, title, text, imagePath string) (string, error)
	MyPosts(ctx context.Context) ([]models.Post, error)
	AllPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ImageURL(id string) string
	DownloadImage(ctx context.Context, id, dst string) (int64, error)
}

type App struct {
	config *config.Config
	api    api
	reader *bufio.Reader
	out    io.Writer

	userName string
	loggedIn bool

	mu   sync.RWMutex
	Mode Mode
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    client.New(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Mode
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

// checkOnline pings the server once and records the result as the current mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.api.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
