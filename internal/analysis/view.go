package analysis

import (
	"strings"

	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/ranking"
	"github.com/hyperjump/resumatch/internal/session"
	"github.com/hyperjump/resumatch/pkg/utils"
)

// PreviewChars is how much resume text a result preview shows.
const PreviewChars = 300

// View shapes a session for display, showing the first limit results (limit <= 0 shows all).
func (s *Service) View(sess *session.Session, limit int) models.AnalysisResponse {
	all := sess.Results()
	shown := ranking.Top(all, limit)
	views := make([]models.ResultView, len(shown))
	for i, r := range shown {
		band := ranking.BandFor(r.Score)
		v := models.ResultView{
			Rank:        r.Rank,
			ID:          r.ID,
			Name:        r.Name(),
			Score:       r.Score,
			Percent:     ranking.Percent(r.Score),
			Band:        string(band),
			Color:       band.Color(),
			Preview:     utils.Truncate(strings.Join(strings.Fields(r.Text), " "), PreviewChars),
			Explainable: i < s.explainTopN,
		}
		if text, ok := sess.Analysis(i); ok {
			v.Explanation = text
		}
		views[i] = v
	}
	return models.AnalysisResponse{
		SessionID:      sess.ID,
		JobDescription: sess.JobDescription,
		Model:          sess.Model,
		Total:          len(all),
		Shown:          len(shown),
		Skipped:        sess.Skipped(),
		Results:        views,
	}
}
