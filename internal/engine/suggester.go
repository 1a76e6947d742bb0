package engine

import (
	"context"
	"log/slog"

	"github.com/reactome/doi-suggester/internal/ir"
)

// Branch names how an entity's candidate edits were chosen.
type Branch string

const (
	// BranchExisting: the entity exists in the previous snapshot, so only
	// edits it did not carry there are candidates.
	BranchExisting Branch = "existing"

	// BranchNew: the entity is absent from the previous snapshot, so all of
	// its edits are candidates.
	BranchNew Branch = "new"

	// BranchInferred: the entity is derived from another one and was skipped.
	BranchInferred Branch = "inferred"
)

// Suggestion says that Ancestor needs attention because of Edits found on
// Entity. Edits is the entity's full external edit set, not only the edits
// that resolved to this ancestor.
type Suggestion struct {
	Ancestor ir.Entity
	Entity   ir.Entity
	Edits    []ir.EditRecord
}

// EntityResult is everything one worker learns about one leaf entity.
type EntityResult struct {
	Entity ir.Entity
	Branch Branch

	// Candidates are the new (Branch A) or all (Branch B) edits.
	Candidates []ir.EditRecord
	// External are the candidates with at least one external author.
	External []ir.EditRecord
	// Unattributed are candidates with no authors.
	Unattributed []ir.EditRecord
	// Ancestors maps each external edit id to its resolved ancestors.
	Ancestors map[ir.ID][]ir.Entity

	Suggestions []Suggestion
	Faults      []*Fault
}

// Suggester evaluates single leaf entities against a previous snapshot.
type Suggester struct {
	current  Source
	previous Source
	resolver *Resolver
	logger   *slog.Logger
}

// NewSuggester creates a suggester. previous may be nil, in which case every
// entity takes Branch B. A nil logger uses slog.Default().
func NewSuggester(current, previous Source, resolver *Resolver, logger *slog.Logger) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{
		current:  current,
		previous: previous,
		resolver: resolver,
		logger:   logger,
	}
}

// Suggest evaluates one leaf entity. It never returns an error: problems are
// recorded in the result's Faults and whatever was resolved before them is
// kept.
func (s *Suggester) Suggest(ctx context.Context, entity ir.Entity) EntityResult {
	res := EntityResult{Entity: entity}

	current, err := ReadEditSequences(ctx, s.current, entity.ID)
	if err != nil {
		res.Faults = append(res.Faults, newFetchFault(entity.ID, "read current edits", err))
		return res
	}

	previous, err := s.previousEdits(ctx, entity.ID)
	if err != nil {
		res.Faults = append(res.Faults, newFetchFault(entity.ID, "read previous edits", err))
		return res
	}

	if previous != nil {
		res.Branch = BranchExisting
	} else {
		res.Branch = BranchNew
	}
	res.Candidates = NewEdits(current, previous)
	res.External, res.Unattributed = ExternalOnly(res.Candidates)
	for _, edit := range res.Unattributed {
		res.Faults = append(res.Faults, newUnattributedFault(entity.ID, edit))
	}
	if len(res.External) == 0 {
		return res
	}

	res.Ancestors = make(map[ir.ID][]ir.Entity, len(res.External))
	union := make(map[ir.ID]ir.Entity)
	for _, edit := range res.External {
		ancestors, err := s.resolver.FurthestAncestorsWithout(ctx, entity, edit)
		if err != nil {
			res.Faults = append(res.Faults, Faults(err)...)
		}
		res.Ancestors[edit.ID] = ancestors
		for _, a := range ancestors {
			union[a.ID] = a
		}
	}

	for _, ancestor := range sortedEntities(union) {
		res.Suggestions = append(res.Suggestions, Suggestion{
			Ancestor: ancestor,
			Entity:   entity,
			Edits:    res.External,
		})
	}

	s.logger.Debug("entity evaluated",
		"entity_id", entity.ID,
		"branch", res.Branch,
		"current_edits", current.Len(),
		"candidates", len(res.Candidates),
		"external", len(res.External),
		"suggestions", len(res.Suggestions),
	)
	return res
}

// previousEdits returns nil when the entity is absent from the previous
// snapshot.
func (s *Suggester) previousEdits(ctx context.Context, id ir.ID) (*ir.EditSequences, error) {
	if s.previous == nil {
		return nil, nil
	}
	prev, err := s.previous.Entity(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, nil
	}
	seqs, err := ReadEditSequences(ctx, s.previous, id)
	if err != nil {
		return nil, err
	}
	return &seqs, nil
}
