package binder

import "sbccheck/internal/domain"

// FormatReport projects an enriched result into the reader-facing
// report. Each entry cites the single retained top hit.
func FormatReport(projectID, assetID string, result domain.Result) domain.Report {
	return domain.Report{
		ProjectID:  projectID,
		AssetID:    assetID,
		Summary:    result.Summary,
		Violations: formatBucket(result.Violations),
		Warnings:   formatBucket(result.Warnings),
	}
}

func formatBucket(findings []domain.Finding) []domain.ReportFinding {
	out := make([]domain.ReportFinding, 0, len(findings))
	for _, f := range findings {
		var ref domain.Citation
		if hit, ok := topHit(f); ok {
			ref = domain.Citation{
				Doc:     hit.Doc,
				Section: hit.Section,
				Page:    hit.Page,
				ChunkID: hit.ChunkID,
				Source:  hit.Source,
			}
		}
		out = append(out, domain.ReportFinding{
			RuleID:       f.RuleID,
			RoomID:       f.RoomID,
			RoomType:     f.RoomType,
			Expected:     f.Expected,
			Actual:       f.Actual,
			RuleSentence: f.RuleSentence,
			Ref:          ref,
		})
	}
	return out
}

func topHit(f domain.Finding) (domain.EvidenceHit, bool) {
	if len(f.EvidenceUsed) > 0 {
		return f.EvidenceUsed[0], true
	}
	if len(f.Evidence) > 0 {
		return f.Evidence[0], true
	}
	return domain.EvidenceHit{}, false
}
