package handlers

import (
	"context"
	"os"
	"time"

	"gallery-viewer/internal/database"
	"gallery-viewer/internal/objectstore"
	"gallery-viewer/internal/signer"
	"gallery-viewer/internal/thumbnail"
)

// LinkStore resolves share link tokens.
type LinkStore interface {
	GetLink(ctx context.Context, token string) (*database.ShareLink, error)
}

// ObjectStore is the bucket objects are served from.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]objectstore.Object, error)
	Open(key string) (*os.File, objectstore.Object, error)
	ArchiveKey(folder string) (string, bool)
}

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires the handlers to their collaborators. DB may be nil, in
// which case readiness only reflects the object store.
type Config struct {
	Links    LinkStore
	Objects  ObjectStore
	Signer   *signer.Signer
	Resolver *thumbnail.Resolver
	Cookies  signer.CookieOptions
	DB       Pinger
}

type Handlers struct {
	links     LinkStore
	objects   ObjectStore
	signer    *signer.Signer
	resolver  *thumbnail.Resolver
	cookies   signer.CookieOptions
	db        Pinger
	startTime time.Time
	now       func() time.Time
}

func New(cfg Config) *Handlers {
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = thumbnail.NewResolver(thumbnail.DefaultPolicy())
	}
	return &Handlers{
		links:     cfg.Links,
		objects:   cfg.Objects,
		signer:    cfg.Signer,
		resolver:  resolver,
		cookies:   cfg.Cookies,
		db:        cfg.DB,
		startTime: time.Now(),
		now:       time.Now,
	}
}
