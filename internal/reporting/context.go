package reporting

import (
	"context"
	"maps"
	"time"

	"github.com/getsentry/sentry-go"
)

type reportingMetaContextKey struct{}

// ReportingMeta is what a request has learned about itself so far: which
// route is serving it, which player it acts for, and free-form tags/extras.
type ReportingMeta struct {
	tags      map[string]string
	extras    map[string]string
	playerID  string
	route     string
	startedAt time.Time
}

func MetaFromContext(ctx context.Context) ReportingMeta {
	meta, ok := ctx.Value(reportingMetaContextKey{}).(ReportingMeta)
	if !ok {
		return ReportingMeta{
			tags:   make(map[string]string),
			extras: make(map[string]string),
		}
	}
	meta.tags = maps.Clone(meta.tags)
	meta.extras = maps.Clone(meta.extras)
	return meta
}

func withMeta(ctx context.Context, update func(meta *ReportingMeta)) context.Context {
	meta := MetaFromContext(ctx)
	update(&meta)
	return context.WithValue(ctx, reportingMetaContextKey{}, meta)
}

func setStartedAtInContext(ctx context.Context, startedAt time.Time) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) { meta.startedAt = startedAt })
}

func AddExtrasToContext(ctx context.Context, extras map[string]string) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) { maps.Copy(meta.extras, extras) })
}

func AddTagsToContext(ctx context.Context, tags map[string]string) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) { maps.Copy(meta.tags, tags) })
}

// SetPlayerIDInContext marks the player the request acts for. Reports are
// attributed to the player as the Sentry user.
func SetPlayerIDInContext(ctx context.Context, playerID string) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) { meta.playerID = playerID })
}

// SetRouteInContext records the mux pattern, e.g. "POST /v1/players/{playerID}/tap"
func SetRouteInContext(ctx context.Context, route string) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) { meta.route = route })
}

func (m ReportingMeta) Tags() map[string]string {
	return maps.Clone(m.tags)
}

func (m ReportingMeta) Extras() map[string]string {
	return maps.Clone(m.extras)
}

func (m ReportingMeta) PlayerID() string {
	return m.playerID
}

func (m ReportingMeta) Route() string {
	return m.route
}

func (m ReportingMeta) applyTo(scope *sentry.Scope) {
	scope.SetTags(m.tags)
	for key, value := range m.extras {
		scope.SetExtra(key, value)
	}
	if m.route != "" {
		scope.SetTag("route", m.route)
	}
	if m.playerID != "" {
		scope.SetUser(sentry.User{ID: m.playerID})
		scope.SetContext("player", sentry.Context{"id": m.playerID})
	}
	if !m.startedAt.IsZero() {
		scope.SetExtra("secondsSinceStart", time.Since(m.startedAt).Seconds())
	}
}
