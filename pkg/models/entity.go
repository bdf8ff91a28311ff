package models

import (
	"fmt"
	"strings"
)

// Kind is the kind of a declared program entity.
type Kind string

const (
	KindUnknown          Kind = ""
	KindType             Kind = "TYPE"
	KindInterface        Kind = "INTERFACE"
	KindEnum             Kind = "ENUM"
	KindRecord           Kind = "RECORD"
	KindAnnotationType   Kind = "ANNOTATION_TYPE"
	KindInitializer      Kind = "INITIALIZER"
	KindEnumConstant     Kind = "ENUM_CONSTANT"
	KindField            Kind = "FIELD"
	KindMethod           Kind = "METHOD"
	KindAnnotationMember Kind = "ANNOTATION_MEMBER"
)

// IsContainer reports whether entities of this kind are internal nodes of a
// declaration tree.
func (k Kind) IsContainer() bool {
	switch k {
	case KindType, KindInterface, KindEnum, KindRecord, KindAnnotationType,
		KindInitializer, KindEnumConstant:
		return true
	default:
		return false
	}
}

// IsTypeLike reports whether k is one of the kinds that may be compared with
// each other during fine matching (a class turned into an interface, etc).
func (k Kind) IsTypeLike() bool {
	return k == KindType || k == KindInterface || k == KindEnum
}

// Compatible reports whether entities of kinds k and o may be paired by the
// structural similarity used in fine matching.
func (k Kind) Compatible(o Kind) bool {
	return k == o || (k.IsTypeLike() && o.IsTypeLike())
}

// Location is a source range inside one file. Lines and columns are 1-based.
type Location struct {
	FilePath    string `json:"filePath"`
	StartLine   int    `json:"startLine"`
	EndLine     int    `json:"endLine"`
	StartColumn int    `json:"startColumn"`
	EndColumn   int    `json:"endColumn"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.FilePath, l.StartLine, l.StartColumn)
}

// Less orders locations by path, then start position, then end position.
func (l Location) Less(o Location) bool {
	if l.FilePath != o.FilePath {
		return l.FilePath < o.FilePath
	}
	if l.StartLine != o.StartLine {
		return l.StartLine < o.StartLine
	}
	if l.StartColumn != o.StartColumn {
		return l.StartColumn < o.StartColumn
	}
	if l.EndLine != o.EndLine {
		return l.EndLine < o.EndLine
	}
	return l.EndColumn < o.EndColumn
}

// Descriptor is the semantic identity of one declared element.
// A Descriptor is a value and is never modified after construction.
type Descriptor struct {
	Kind      Kind     `json:"type"`
	Name      string   `json:"name"`
	Container string   `json:"container"`
	Namespace string   `json:"-"`
	Params    []string `json:"-"`
	Location  Location `json:"location"`
}

// Equal reports whether two descriptors name the same entity: same kind,
// name, container and parameter signature. Locations are ignored.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.Kind == o.Kind &&
		d.Name == o.Name &&
		d.Container == o.Container &&
		equalStrings(d.Params, o.Params)
}

// EqualLocal is Equal without the container.
func (d Descriptor) EqualLocal(o Descriptor) bool {
	return d.Kind == o.Kind && d.Name == o.Name && equalStrings(d.Params, o.Params)
}

// EqualRelocated compares descriptors whose files were renamed or moved:
// containers are compared relative to each side's namespace.
func (d Descriptor) EqualRelocated(o Descriptor) bool {
	return d.Kind == o.Kind &&
		d.Name == o.Name &&
		d.RelativeContainer() == o.RelativeContainer() &&
		equalStrings(d.Params, o.Params)
}

// RelativeContainer returns the container with the namespace prefix removed.
func (d Descriptor) RelativeContainer() string {
	if d.Namespace == "" {
		return d.Container
	}
	if d.Container == d.Namespace {
		return ""
	}
	return strings.TrimPrefix(d.Container, d.Namespace+".")
}

// Key returns a string that is equal for two descriptors iff Equal holds.
func (d Descriptor) Key() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	b.WriteByte('|')
	b.WriteString(d.Container)
	b.WriteByte('|')
	b.WriteString(d.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(d.Params, ","))
	b.WriteByte(')')
	return b.String()
}

// QualifiedName is the container-qualified name of the entity.
func (d Descriptor) QualifiedName() string {
	if d.Container == "" {
		return d.Name
	}
	return d.Container + "." + d.Name
}

func (d Descriptor) String() string {
	s := d.QualifiedName()
	if d.Kind == KindMethod {
		s += "(" + strings.Join(d.Params, ", ") + ")"
	}
	return s
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
