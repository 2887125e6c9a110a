package tui

import (
	"context"
	"net/http"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/viewer"
)

// Renewer exchanges a share token for cookies and reports where the
// server redirected; *client.Client implements it.
type Renewer interface {
	Renew(ctx context.Context, token string) (string, error)
}

// landedMsg carries the outcome of resolving a navigation target.
type landedMsg struct {
	gen    int
	params viewer.Params
	route  *viewer.ErrorRoute
}

// loadedMsg reports that Session.Load returned.
type loadedMsg struct {
	gen int
	err error
}

func clientError() *viewer.ErrorRoute {
	return &viewer.ErrorRoute{Code: http.StatusBadGateway, Reason: viewer.ReasonClientError}
}

// resolve turns a navigation target into landing parameters. Renewal URLs
// go through the server first so the session starts with fresh cookies.
func resolve(ctx context.Context, r Renewer, target string) (viewer.Params, *viewer.ErrorRoute) {
	u, err := url.Parse(target)
	if err != nil {
		return viewer.Params{}, &viewer.ErrorRoute{Code: http.StatusBadRequest, Reason: viewer.ReasonMissingFolder}
	}
	if u.Path != refresh.RenewalPath {
		return viewer.ParseLanding(target)
	}
	if r == nil {
		return viewer.Params{}, clientError()
	}

	landing, err := r.Renew(ctx, u.Query().Get("t"))
	if err != nil {
		logging.Warn("tui: renewal failed: %v", err)
		if landing != "" {
			if _, route := viewer.ParseLanding(landing); route != nil {
				return viewer.Params{}, route
			}
		}
		return viewer.Params{}, clientError()
	}
	return viewer.ParseLanding(landing)
}

// tokenOf extracts the share token from a renewal or landing URL.
func tokenOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Query().Get("t")
}

func resolveCmd(ctx context.Context, r Renewer, gen int, target string) tea.Cmd {
	return func() tea.Msg {
		params, route := resolve(ctx, r, target)
		return landedMsg{gen: gen, params: params, route: route}
	}
}
