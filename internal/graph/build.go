package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/file-citas/zotgraph/internal/paper"
	"github.com/file-citas/zotgraph/internal/refextract"
)

// ErrNoMetadata is returned when the resolver yields no record.
var ErrNoMetadata = errors.New("resolver returned no metadata")

// loadOrResolve returns the cached record for id, or resolves and caches a
// new one.
func (e *Engine) loadOrResolve(ctx context.Context, id string) (*paper.Record, error) {
	if rec := e.cache.Load(id); rec != nil {
		return rec, nil
	}
	return e.resolve(ctx, id)
}

// resolve builds a fresh record for id: metadata merged with the metadata
// of known duplicates, the matching library record and the linked extracted
// reference list. Failures of the resolver or the library abort; failures
// of reference extraction only leave the record without extracted refs.
func (e *Engine) resolve(ctx context.Context, id string) (*paper.Record, error) {
	e.logger.Info("resolving paper", "paperId", id)
	meta, err := e.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	canon := e.canonical(meta.PaperID)
	if canon != meta.PaperID {
		e.logger.Info("resolved id is a known duplicate", "paperId", meta.PaperID, "canonical", canon)
		if meta, err = e.fetch(ctx, canon); err != nil {
			return nil, err
		}
	}
	meta.PaperID = canon
	e.mergeDuplicates(ctx, meta)

	rec := &paper.Record{
		PaperID: canon,
		Title:   meta.Title,
		DOI:     meta.DOI,
		Meta:    meta,
	}

	if e.lib != nil {
		lr, err := e.lib.FindRecord(ctx, "", meta.DOI, meta.Title)
		if err != nil {
			return nil, fmt.Errorf("library lookup for %s: %w", canon, err)
		}
		rec.Library = lr
	}
	rec.Refs = e.extractedRefs(ctx, rec)

	if _, err := e.cache.Store(canon, rec, false); err != nil {
		e.logger.Warn("caching node", "paperId", canon, "error", err)
	}
	return rec, nil
}

func (e *Engine) fetch(ctx context.Context, id string) (*paper.Metadata, error) {
	meta, err := e.resolver.Paper(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id, err)
	}
	if meta == nil || meta.PaperID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoMetadata, id)
	}
	return meta, nil
}

// mergeDuplicates folds the citation and reference lists of every known
// duplicate of meta into meta and canonicalizes all link targets.
// Duplicates are fetched by their own id, bypassing canonicalization.
func (e *Engine) mergeDuplicates(ctx context.Context, meta *paper.Metadata) {
	refs := [][]paper.Link{meta.References}
	cits := [][]paper.Link{meta.Citations}
	for _, dup := range e.aliases.Duplicates(meta.PaperID) {
		dm, err := e.resolver.Paper(ctx, dup)
		if err != nil || dm == nil {
			e.logger.Warn("resolving duplicate", "paperId", meta.PaperID, "duplicate", dup, "error", err)
			continue
		}
		e.logger.Debug("merging duplicate", "paperId", meta.PaperID, "duplicate", dup)
		refs = append(refs, dm.References)
		cits = append(cits, dm.Citations)
	}
	meta.References = e.aliases.MergeLinks(refs...)
	meta.Citations = e.aliases.MergeLinks(cits...)
}

// extractedRefs runs reference extraction and both matching stages for a
// paper in the library. It returns nil when anything is missing.
func (e *Engine) extractedRefs(ctx context.Context, rec *paper.Record) map[string]paper.ExtractedRef {
	if e.refs == nil || e.lib == nil || rec.Library == nil {
		return nil
	}
	pdfPath, err := e.lib.PDFPath(ctx, rec.Library.Key)
	if err != nil {
		e.logger.Debug("no pdf path", "paperId", rec.PaperID, "error", err)
		return nil
	}
	res, err := e.refs.References(ctx, rec.PaperID, pdfPath)
	if err != nil {
		e.logger.Warn("extracting references", "paperId", rec.PaperID, "error", err)
		return nil
	}
	derived := refextract.DeriveTitles(res, e.titleFloor)
	return e.linker.ResolveRefs(derived, rec.References())
}
