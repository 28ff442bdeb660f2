// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package apps

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
)

var ErrNoApplication = errors.New("no application registered for payload kind")

// Delivery is a verified inbound message handed to an application.
type Delivery struct {
	Hash     ids.ID
	Envelope *xcm.Envelope
	Payload  payload.Payload
	Client   xcm.Address
	Payer    xcm.Address
}

// Application applies the effect of a delivered payload. Execute runs inside
// the transfer's storage transaction; returning an error aborts the transfer
// and discards every write made so far.
type Application interface {
	Name() string
	Execute(tx storage.Txn, d *Delivery) error
}

// Router dispatches deliveries to the application registered for their kind.
type Router struct {
	apps map[payload.Kind]Application
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{apps: make(map[payload.Kind]Application)}
}

// NewDefaultRouter routes every payload kind to its bundled application.
func NewDefaultRouter(lib *storage.Library) *Router {
	r := NewRouter()
	r.Register(payload.KindGeneric, NewPassthrough(lib))
	r.Register(payload.KindOwnership, NewOwnership(lib))
	r.Register(payload.KindToken, NewToken(lib))
	return r
}

// Register installs app for kind, replacing any previous one
func (r *Router) Register(kind payload.Kind, app Application) {
	r.apps[kind] = app
}

func (*Router) Name() string { return "router" }

func (r *Router) Execute(tx storage.Txn, d *Delivery) error {
	kind := d.Payload.Kind()
	app, ok := r.apps[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoApplication, kind)
	}
	if err := app.Execute(tx, d); err != nil {
		return fmt.Errorf("%s: %w", app.Name(), err)
	}
	return nil
}
