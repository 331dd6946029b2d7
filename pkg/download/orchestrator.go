// Package download runs one download session: offer the artifacts that are
// not yet obtained, fetch the selected ones in order, refresh the default
// model link and write confirmation files.
//
// Image confirmations are written as soon as each image is fetched. Model
// confirmations are held back until every selected item was fetched and the
// default link was refreshed, so a failed link never leaves a model marked
// as obtained.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"neurobik/pkg/apperr"
	"neurobik/pkg/config"
	"neurobik/pkg/confirm"
	"neurobik/pkg/history"
	"neurobik/pkg/link"
	"neurobik/pkg/selector"
)

// Fetcher obtains one artifact.
type Fetcher interface {
	Fetch(ctx context.Context, a config.Artifact) error
	// Tool names the external program the artifact needs, "" for none.
	Tool(a config.Artifact) string
}

// Linker refreshes the default model link.
type Linker func(dir, target string) (string, error)

// Journal records fetch attempts. Failures to record are logged only.
type Journal interface {
	Record(ctx context.Context, e history.Entry) error
}

type Orchestrator struct {
	Config   *config.Config
	Selector selector.Selector
	Models   Fetcher
	Images   Fetcher
	// LookPath checks that external tools exist before anything is fetched.
	// Nil skips the check.
	LookPath func(name string) (string, error)
	Linker   Linker
	Journal  Journal
	Logger   *slog.Logger
	// OnState, when set, observes every state transition.
	OnState func(State)
}

type Result struct {
	State         State
	NothingToDo   bool
	FetchedModels []config.Artifact
	FetchedImages []config.Artifact
	DefaultModel  config.Artifact
	LinkPath      string
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *Orchestrator) enter(res *Result, s State) {
	res.State = s
	o.logger().Debug("download state", "state", s.String())
	if o.OnState != nil {
		o.OnState(s)
	}
}

// Offer lists what a run would present for selection: models without a
// confirmation file, then every configured image. Images are offered even
// when confirmed.
func (o *Orchestrator) Offer() []selector.Item {
	var items []selector.Item
	for _, m := range o.Config.ModelArtifacts() {
		if !m.Confirmed() {
			items = append(items, selector.Item{Name: m.Name, Kind: config.KindModel})
		}
	}
	for _, img := range o.Config.ImageArtifacts() {
		items = append(items, selector.Item{Name: img.Name, Kind: config.KindImage})
	}
	return items
}

// Run executes one session. On error the returned result is in
// StateAborted; confirmations written before the failure are kept.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	res := Result{State: StateIdle}
	log := o.logger()

	o.enter(&res, StateSelecting)
	offer := o.Offer()
	if len(offer) == 0 {
		log.Info("no items to download")
		res.NothingToDo = true
		o.enter(&res, StateDone)
		return res, nil
	}
	selected, err := o.Selector.Select(ctx, offer)
	if err != nil {
		return o.abort(&res, fmt.Errorf("selection failed: %w", err))
	}
	if len(selected) == 0 {
		log.Info("nothing selected")
		o.enter(&res, StateDone)
		return res, nil
	}

	artifacts, err := o.resolve(selected)
	if err != nil {
		return o.abort(&res, err)
	}
	if err := o.checkTools(artifacts); err != nil {
		return o.abort(&res, err)
	}

	o.enter(&res, StateFetching)
	for i, a := range artifacts {
		log.Info("fetching", "kind", a.Kind, "name", a.Name, "item", i+1, "of", len(artifacts))
		if err := o.fetch(ctx, a); err != nil {
			return o.abort(&res, fmt.Errorf("%s %s: %w", a.Kind, a.Name, err))
		}
		switch a.Kind {
		case config.KindModel:
			res.FetchedModels = append(res.FetchedModels, a)
		case config.KindImage:
			if err := o.confirm(a.Confirmation); err != nil {
				return o.abort(&res, err)
			}
			res.FetchedImages = append(res.FetchedImages, a)
		}
	}

	if len(res.FetchedModels) > 0 {
		o.enter(&res, StateLinking)
		def, ok := o.Config.DefaultModel()
		if !ok {
			return o.abort(&res, fmt.Errorf("%w: no default model available", apperr.ErrConfiguration))
		}
		linker := o.Linker
		if linker == nil {
			linker = link.EnsureDefault
		}
		linkPath, err := linker(def.Confirmation.Dir(), def.Destination)
		if err != nil {
			return o.abort(&res, err)
		}
		res.DefaultModel = def
		res.LinkPath = linkPath
		log.Info("default model linked", "model", def.Destination, "link", linkPath)
	}

	o.enter(&res, StateConfirming)
	for _, m := range res.FetchedModels {
		if err := o.confirm(m.Confirmation); err != nil {
			return o.abort(&res, err)
		}
	}
	if len(res.FetchedModels) > 0 {
		if ready, ok := o.Config.ProviderReady(); ok {
			if err := o.confirm(ready); err != nil {
				return o.abort(&res, err)
			}
		}
	}

	o.enter(&res, StateDone)
	return res, nil
}

func (o *Orchestrator) confirm(m confirm.Marker) error {
	if err := m.Create(); err != nil {
		return err
	}
	o.logger().Debug("confirmed", "artifact", m.Identity(), "path", m.Path())
	return nil
}

func (o *Orchestrator) abort(res *Result, err error) (Result, error) {
	o.enter(res, StateAborted)
	return *res, err
}

// resolve maps selected items back to configured artifacts, keeping the
// selection order.
func (o *Orchestrator) resolve(items []selector.Item) ([]config.Artifact, error) {
	byKey := map[selector.Item]config.Artifact{}
	for _, a := range o.Config.ModelArtifacts() {
		byKey[selector.Item{Name: a.Name, Kind: a.Kind}] = a
	}
	for _, a := range o.Config.ImageArtifacts() {
		byKey[selector.Item{Name: a.Name, Kind: a.Kind}] = a
	}
	out := make([]config.Artifact, 0, len(items))
	for _, it := range items {
		a, ok := byKey[it]
		if !ok {
			return nil, fmt.Errorf("%w: selected %s is not configured", apperr.ErrConfiguration, it)
		}
		out = append(out, a)
	}
	return out, nil
}

func (o *Orchestrator) fetcherFor(a config.Artifact) Fetcher {
	if a.Kind == config.KindImage {
		return o.Images
	}
	return o.Models
}

func (o *Orchestrator) checkTools(artifacts []config.Artifact) error {
	if o.LookPath == nil {
		return nil
	}
	checked := map[string]bool{}
	for _, a := range artifacts {
		tool := o.fetcherFor(a).Tool(a)
		if tool == "" || checked[tool] {
			continue
		}
		checked[tool] = true
		if _, err := o.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s not installed", apperr.ErrExternalTool, tool)
		}
	}
	return nil
}

func (o *Orchestrator) fetch(ctx context.Context, a config.Artifact) error {
	started := time.Now()
	err := o.fetcherFor(a).Fetch(ctx, a)
	if o.Journal != nil {
		e := history.Entry{
			Name:      a.Name,
			Kind:      string(a.Kind),
			Outcome:   history.OutcomeOK,
			StartedAt: started,
			Duration:  time.Since(started),
		}
		if err != nil {
			e.Outcome = history.OutcomeFailed
			e.Error = err.Error()
		}
		if jerr := o.Journal.Record(ctx, e); jerr != nil {
			o.logger().Warn("failed to record fetch", "name", a.Name, "error", jerr)
		}
	}
	return err
}
