package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeMatchCommit() string {
	return `Pairs the declared entities (types, methods, fields, initializers, enum constants) and statement blocks of a commit with those of its first parent.

USE WHEN:
- Tracing where a method or class went after a refactoring commit
- Reviewing a commit that renames, moves or reorganizes Java code
- Building per-entity history across a commit

INTERPRETING RESULTS:
- matchedEntities: the same entity on both sides with a changed declaration, name, container or file
- unchangedEntities: identical on both sides (omitted when include_unchanged is false)
- addedEntities / deletedEntities: no counterpart on the other side
- matchedStatements: changed statement blocks inside matched methods, keyed by block type and expression
- A name pair like total(long) -> net(long) is a rename; differing containers indicate a move

METRICS RETURNED:
- Per pair: leftSideLocation and rightSideLocation with container, type, name, file and line/column range
- Summary: file change counts, entity and statement counts, fixpoint rounds`
}

func describeMatchHistory() string {
	return `Runs match_commit over a first-parent range of commits, newest first.

USE WHEN:
- Following an entity through several commits
- Building a refactoring timeline for a branch
- Warming the result cache before interactive queries

INTERPRETING RESULTS:
- One result per commit, same shape as match_commit
- Commits that cannot be matched are skipped and logged
- With summary_only set, entity lists are dropped and only counts are returned

METRICS RETURNED:
- results: per-commit sha1, url and summary counts
- Entity and statement pairs unless summary_only is set`
}

func describeValidateReport() string {
	return `Validates a persisted remapper JSON report against its JSON schema.

USE WHEN:
- Checking a report produced by an older version before consuming it
- Verifying hand-edited or externally produced reports

INTERPRETING RESULTS:
- "valid" when the document conforms
- Otherwise the schema violations with their JSON pointer locations

METRICS RETURNED:
- A single validation verdict`
}
