// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/ledger/database"
	"github.com/ardanlabs/powledger/foundation/ledger/state"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	State       *state.State
	NS          *nameservice.NameService
	WS          websocket.Upgrader
	Evts        *events.Events
	MineTimeout time.Duration
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitRecord verifies and mines a signed record into the ledger. The
// request does not return until the proof of work is solved.
func (h Handlers) SubmitRecord(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sr database.SignedRecord
	if err := web.Decode(r, &sr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	sig, err := sr.SignatureBytes()
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("decoding signature: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("submit record", "traceid", v.TraceID, "record", sr.Record, "amount", sr.Record.Amount)

	if h.MineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MineTimeout)
		defer cancel()
	}

	link, err := h.State.Append(ctx, sr.Record, sr.PublicKey, sig)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, link, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Genesis(), http.StatusOK)
}

// Status returns the current length and tip of the ledger.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tip := h.State.LatestLink()

	st := status{
		Length:     h.State.Length(),
		LatestHash: tip.Hash(),
		Difficulty: h.State.Genesis().Difficulty,
		Scheme:     h.State.SchemeName(),
		Listeners:  h.Evts.Count(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Links returns the links in the specified number range. Without a range
// every link is returned.
func (h Handlers) Links(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := parseNumber(web.Param(r, "from"), 0)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := parseNumber(web.Param(r, "to"), state.QueryLatest)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	links, err := h.State.QueryLinksByNumber(from, to)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, links, http.StatusOK)
}

// LinksByAccount returns the links where the account is the payer or payee.
func (h Handlers) LinksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	links, err := h.State.QueryLinksByAccount(web.Param(r, "account"))
	if err != nil {
		return errs.FromLedger(err)
	}

	if len(links) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, links, http.StatusOK)
}

// Accounts returns the named accounts known to the node along with the
// number of links each one appears in.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.NS == nil {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	names := h.NS.Copy()
	accts := make([]account, 0, len(names))
	for publicKey, name := range names {
		links, err := h.State.QueryLinksByAccount(publicKey)
		if err != nil {
			return errs.FromLedger(err)
		}

		accts = append(accts, account{
			Name:      name,
			PublicKey: publicKey,
			Links:     len(links),
		})
	}

	sort.Slice(accts, func(i, j int) bool { return accts[i].Name < accts[j].Name })

	return web.Respond(ctx, w, accts, http.StatusOK)
}

// Verify recalculates every hash in the ledger and reports the result.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.Verify(); err != nil {
		return errs.FromLedger(err)
	}

	resp := struct {
		Status string `json:"status"`
		Length uint64 `json:"length"`
	}{
		Status: "ledger verified",
		Length: h.State.Length(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// parseNumber converts a link number parameter. An empty parameter returns
// the default and "latest" refers to the tip of the ledger.
func parseNumber(param string, def uint64) (uint64, error) {
	switch param {
	case "":
		return def, nil
	case "latest":
		return state.QueryLatest, nil
	}

	num, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid link number %q", param)
	}

	return num, nil
}
