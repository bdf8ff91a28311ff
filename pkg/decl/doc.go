// Package decl holds the per-file declaration trees consumed by the matcher.
//
// A tree has one root per source file. Container entities (types, enum
// constants, initializers) are internal nodes and own their members;
// fields, methods and annotation members are leaves. Nodes carry the
// normalized declaration text used for exact comparison, the referencers
// of the entity taken from the dependency graph, and the statement blocks
// of method and initializer bodies.
//
// Trees are built once by a front end and are read-only afterwards, except
// for pruning which removes matched children and archives the previous
// child list so structural similarity can still see them.
package decl
