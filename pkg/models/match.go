package models

import "strings"

// EntityLocation identifies one side of an entity correspondence.
type EntityLocation struct {
	Container string `json:"container"`
	Type      Kind   `json:"type"`
	Name      string `json:"name"`
	Location
}

// NewEntityLocation builds the report view of a descriptor. Method names
// carry their parameter types so overloads stay distinct.
func NewEntityLocation(d Descriptor) EntityLocation {
	name := d.Name
	if d.Kind == KindMethod {
		name += "(" + strings.Join(d.Params, ", ") + ")"
	}
	return EntityLocation{
		Container: d.Container,
		Type:      d.Kind,
		Name:      name,
		Location:  d.Location,
	}
}

// StatementLocation identifies one side of a statement block correspondence.
type StatementLocation struct {
	Method     string `json:"method"`
	Type       string `json:"type"`
	Expression string `json:"expression"`
	Location
}

// EntityPair is a before/after entity correspondence.
type EntityPair struct {
	Left  EntityLocation `json:"leftSideLocation"`
	Right EntityLocation `json:"rightSideLocation"`
}

// StatementPair is a before/after statement block correspondence.
type StatementPair struct {
	Left  StatementLocation `json:"leftSideLocation"`
	Right StatementLocation `json:"rightSideLocation"`
}

// MatchSummary holds aggregate counts for one commit.
type MatchSummary struct {
	FilesAdded          int `json:"filesAdded"`
	FilesDeleted        int `json:"filesDeleted"`
	FilesModified       int `json:"filesModified"`
	FilesRenamed        int `json:"filesRenamed"`
	MatchedEntities     int `json:"matchedEntities"`
	UnchangedEntities   int `json:"unchangedEntities"`
	AddedEntities       int `json:"addedEntities"`
	DeletedEntities     int `json:"deletedEntities"`
	MatchedStatements   int `json:"matchedStatements"`
	UnchangedStatements int `json:"unchangedStatements"`
	AddedStatements     int `json:"addedStatements"`
	DeletedStatements   int `json:"deletedStatements"`
	FixpointRounds      int `json:"fixpointRounds"`
}

// CommitResult is the persisted matching result of one commit.
type CommitResult struct {
	Repository          string              `json:"repository"`
	SHA1                string              `json:"sha1"`
	URL                 string              `json:"url"`
	Parent              string              `json:"parent,omitempty"`
	MatchedEntities     []EntityPair        `json:"matchedEntities"`
	UnchangedEntities   []EntityPair        `json:"unchangedEntities,omitempty"`
	AddedEntities       []EntityLocation    `json:"addedEntities,omitempty"`
	DeletedEntities     []EntityLocation    `json:"deletedEntities,omitempty"`
	MatchedStatements   []StatementPair     `json:"matchedStatements,omitempty"`
	UnchangedStatements []StatementPair     `json:"unchangedStatements,omitempty"`
	AddedStatements     []StatementLocation `json:"addedStatements,omitempty"`
	DeletedStatements   []StatementLocation `json:"deletedStatements,omitempty"`
	Summary             MatchSummary        `json:"summary"`
}

// MatchReport is the top-level persisted report.
type MatchReport struct {
	Results []CommitResult `json:"results"`
}
