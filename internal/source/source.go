// Package source provides the data-fetch collaborators that supply company
// payloads: the local store, an HTTP backend and a JSON file.
package source

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Kinds accepted by New.
const (
	KindStore = "store"
	KindHTTP  = "http"
	KindFile  = "file"
)

// Source fetches the payload for one company.
type Source interface {
	Fetch(ctx context.Context, q core.Query) (*core.Payload, error)
}

// StoreSource serves payloads from a company store.
type StoreSource struct {
	store core.Store
}

// NewStoreSource wraps store.
func NewStoreSource(store core.Store) *StoreSource {
	return &StoreSource{store: store}
}

// Fetch loads the company selected by q.
func (s *StoreSource) Fetch(ctx context.Context, q core.Query) (*core.Payload, error) {
	if q.IsZero() {
		return nil, core.ErrQueryRequired
	}
	c, err := s.store.GetCompany(ctx, q)
	if err != nil {
		return nil, err
	}
	return &core.Payload{Success: true, Data: c}, nil
}

// Func adapts a function to Source.
type Func func(ctx context.Context, q core.Query) (*core.Payload, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, q core.Query) (*core.Payload, error) {
	return f(ctx, q)
}

// Options selects and configures a source.
type Options struct {
	Kind string
	HTTP HTTPConfig
	File string
}

// New builds the source named by opts.Kind. The store is only used by the
// store kind.
func New(opts Options, store core.Store) (Source, error) {
	switch opts.Kind {
	case KindStore, "":
		if store == nil {
			return nil, fmt.Errorf("store source requires an open store")
		}
		return NewStoreSource(store), nil
	case KindHTTP:
		return NewHTTPSource(opts.HTTP)
	case KindFile:
		if opts.File == "" {
			return nil, fmt.Errorf("file source requires a path")
		}
		return NewFileSource(opts.File), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q (want store, http or file)", opts.Kind)
	}
}
