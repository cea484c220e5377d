package reconcile

import (
	"context"
	"fmt"

	"meikan/internal/nameutil"
	"meikan/internal/registry"
	"meikan/internal/similarity"
	"meikan/internal/verifycache"
)

// verifyRow scores one row against the pre-loaded members and produces its
// result. Registry failures never escape: they become StatusError for this
// row only.
func (s *Scheduler) verifyRow(ctx context.Context, t task, members []*memberRef) Result {
	best, score := s.findCandidate(t, members)
	if best == nil {
		result := Result{
			RowIndex:   t.row.Index,
			Status:     StatusNotFound,
			Similarity: score,
			Message:    fmt.Sprintf("%s: no registry member above threshold", t.name),
		}
		s.storeOutcome(t, result)
		return result
	}

	member, err := s.detailFor(ctx, best)
	if err != nil {
		return Result{
			RowIndex:   t.row.Index,
			Status:     StatusError,
			Similarity: score,
			Message:    fmt.Sprintf("fetch detail for %s: %v", member.Name, err),
		}
	}

	result := Result{
		RowIndex:    t.row.Index,
		Similarity:  score,
		Member:      &member,
		Corrections: diffCorrections(t.row, &member),
	}
	if s.opts.Policy.Classify(score) == similarity.Exact {
		result.Status = StatusMatch
		result.Message = fmt.Sprintf("%s: exact match (%s)", t.name, best.team.Name)
	} else {
		result.Status = StatusPartialMatch
		result.Message = fmt.Sprintf("%s: partial match %s (similarity %.2f)", t.name, member.Name, score)
	}
	s.storeOutcome(t, result)
	return result
}

// detailFor returns the member with extended fields populated, fetching
// the detail page at most once per registry member. The per-ref lock makes
// a concurrent second row for the same member wait for the first fetch
// instead of repeating it. Failed fetches leave the ref undetailed so a
// later row may retry.
func (s *Scheduler) detailFor(ctx context.Context, ref *memberRef) (registry.Member, error) {
	ref.mu.Lock()
	defer ref.mu.Unlock()
	if ref.member.Detailed {
		return ref.member, nil
	}
	if err := s.client.FetchMemberDetail(ctx, &ref.member); err != nil {
		return ref.member, err
	}
	return ref.member, nil
}

// findCandidate scans the pre-loaded members for the best-scoring
// candidate at or above the candidate threshold. An exact score
// short-circuits the scan; ties keep the first-encountered member, so
// results are deterministic for a fixed enumeration order.
//
// When the row's name is written in kana, each member's phonetic spelling
// is scored as a fallback channel and the higher score wins. Names in
// kanji never consult the phonetic channel.
func (s *Scheduler) findCandidate(t task, members []*memberRef) (*memberRef, float64) {
	useKana := nameutil.IsKana(t.canonical)

	var best *memberRef
	var bestScore float64
	for _, ref := range members {
		if ref.canonical == "" {
			continue
		}
		score := similarity.Ratio(t.canonical, ref.canonical)
		if useKana && ref.canonKana != "" {
			if kanaScore := similarity.Ratio(t.canonical, ref.canonKana); kanaScore > score {
				score = kanaScore
			}
		}
		if s.opts.Policy.Classify(score) == similarity.Exact {
			return ref, score
		}
		if score > bestScore {
			bestScore = score
			if s.opts.Policy.Classify(score) == similarity.Candidate {
				best = ref
			}
		}
	}
	if best == nil {
		return nil, bestScore
	}
	return best, bestScore
}

// storeOutcome records the row's outcome in the persistent cache under the
// (name, institution) key. Row-scoped errors are not cached; not-found
// outcomes are cached subject to cache policy.
func (s *Scheduler) storeOutcome(t task, result Result) {
	if result.Status == StatusError || result.Status == StatusMissingData {
		return
	}
	var member *registry.Member
	if result.Member != nil {
		snapshot := *result.Member
		member = &snapshot
	}
	s.verify.Store(verifycache.Entry{
		Key:         t.cacheKey,
		Status:      string(result.Status),
		Similarity:  result.Similarity,
		Member:      member,
		Corrections: result.Corrections,
		Message:     result.Message,
	})
}
