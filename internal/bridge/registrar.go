package bridge

import (
	"errors"
	"fmt"

	"github.com/danmuck/wxsbridge/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ModuleTable maps declared module names to module ids for one owner. It is
// produced outside this package, at build or bootstrap time.
type ModuleTable map[string]string

// IDs returns the set of module ids present in t.
func (t ModuleTable) IDs() map[string]struct{} {
	out := make(map[string]struct{}, len(t))
	for _, id := range t {
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

// Registrar binds declared module names to module ids on owners.
type Registrar struct {
	logger zerolog.Logger
	// Quiet suppresses missing-module diagnostics.
	Quiet bool
}

// NewRegistrar returns a registrar that logs to the process logger.
func NewRegistrar() *Registrar {
	return NewRegistrarWithLogger(log.Logger)
}

func NewRegistrarWithLogger(logger zerolog.Logger) *Registrar {
	return &Registrar{logger: logger.With().Str("component", "bridge.registrar").Logger()}
}

// Register binds name to moduleID on owner and returns the root handle.
// kind must be KindWXS or KindRenderJS.
// If moduleID is empty or absent from known, nothing is bound and a
// MissingModuleError is returned after being logged. Registering the same
// name again returns the existing root.
func (r *Registrar) Register(owner *Owner, kind Kind, name, moduleID string, known map[string]struct{}) (*Handle, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	if owner.Destroyed() {
		return nil, ErrOwnerDestroyed
	}
	if _, ok := known[moduleID]; moduleID == "" || !ok {
		err := MissingModuleError{OwnerID: owner.ID(), Kind: kind, Name: name, ModuleID: moduleID}
		r.reportMissing(err, len(known))
		return nil, err
	}
	root, created, err := owner.bind(kind, name, moduleID)
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.Debug().
			Int("owner", owner.ID()).
			Str("kind", string(kind)).
			Str("module", name).
			Str("module_id", moduleID).
			Msg("module bound")
	}
	return root, nil
}

// InitModules registers every declared name against table. Names without a
// module id are skipped; their MissingModuleErrors are joined and returned
// while the remaining names still bind.
func (r *Registrar) InitModules(owner *Owner, kind Kind, names []string, table ModuleTable) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	if len(names) == 0 {
		return nil
	}
	known := table.IDs()
	var errs []error
	for _, name := range names {
		if _, err := r.Register(owner, kind, name, table[name], known); err != nil {
			if !errors.Is(err, ErrMissingModule) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registrar) reportMissing(err MissingModuleError, known int) {
	observability.RecordMissingModule(string(err.Kind))
	if r.Quiet {
		return
	}
	r.logger.Error().
		Int("owner", err.OwnerID).
		Str("kind", string(err.Kind)).
		Str("table", err.Kind.TableKey()).
		Str("module", err.Name).
		Str("module_id", err.ModuleID).
		Int("known", known).
		Msg("initModules: module id not found")
}
