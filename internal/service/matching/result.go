package matching

import (
	"github.com/panbanda/remapper/pkg/analyzer/matcher"
	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// NewResult converts a finished match into its persisted form.
func NewResult(repository, sha, url string, changes models.FileChanges, mp *matcher.MatchPair) *models.CommitResult {
	res := &models.CommitResult{
		Repository:          repository,
		SHA1:                sha,
		URL:                 url,
		MatchedEntities:     entityPairs(mp.MatchedEntities()),
		UnchangedEntities:   entityPairs(mp.UnchangedEntities()),
		AddedEntities:       entityLocations(mp.AddedEntities()),
		DeletedEntities:     entityLocations(mp.DeletedEntities()),
		MatchedStatements:   statementPairs(mp.MatchedStatements()),
		UnchangedStatements: statementPairs(mp.UnchangedStatements()),
		AddedStatements:     statementLocations(mp.AddedStatements()),
		DeletedStatements:   statementLocations(mp.DeletedStatements()),
	}
	res.Summary = models.MatchSummary{
		FilesAdded:          len(changes.Added),
		FilesDeleted:        len(changes.Deleted),
		FilesModified:       len(changes.Modified),
		FilesRenamed:        len(changes.Renamed),
		MatchedEntities:     len(res.MatchedEntities),
		UnchangedEntities:   len(res.UnchangedEntities),
		AddedEntities:       len(res.AddedEntities),
		DeletedEntities:     len(res.DeletedEntities),
		MatchedStatements:   len(res.MatchedStatements),
		UnchangedStatements: len(res.UnchangedStatements),
		AddedStatements:     len(res.AddedStatements),
		DeletedStatements:   len(res.DeletedStatements),
		FixpointRounds:      mp.Iterations,
	}
	return res
}

func entityPairs(pairs []matcher.EntityPair) []models.EntityPair {
	out := make([]models.EntityPair, len(pairs))
	for i, p := range pairs {
		out[i] = models.EntityPair{
			Left:  models.NewEntityLocation(p.Before.Entity()),
			Right: models.NewEntityLocation(p.After.Entity()),
		}
	}
	return out
}

func entityLocations(nodes []*decl.Node) []models.EntityLocation {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]models.EntityLocation, len(nodes))
	for i, n := range nodes {
		out[i] = models.NewEntityLocation(n.Entity())
	}
	return out
}

func statementLocation(b *decl.Block) models.StatementLocation {
	return models.StatementLocation{
		Method:     b.Method,
		Type:       b.Type.String(),
		Expression: b.Expression,
		Location:   b.Location,
	}
}

func statementPairs(pairs []matcher.StatementPair) []models.StatementPair {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]models.StatementPair, len(pairs))
	for i, p := range pairs {
		out[i] = models.StatementPair{
			Left:  statementLocation(p.Before),
			Right: statementLocation(p.After),
		}
	}
	return out
}

func statementLocations(blocks []*decl.Block) []models.StatementLocation {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]models.StatementLocation, len(blocks))
	for i, b := range blocks {
		out[i] = statementLocation(b)
	}
	return out
}
