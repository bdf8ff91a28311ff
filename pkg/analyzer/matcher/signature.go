package matcher

import (
	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

func (r *run) matchBySignature() {
	for _, path := range r.in.Changes.Modified {
		b, a := r.in.Before[path], r.in.After[path]
		if b == nil || a == nil {
			continue
		}
		after := a.UnmatchedNodes()
		for _, n1 := range b.UnmatchedNodes() {
			for _, n2 := range after {
				if n2.Matched() {
					continue
				}
				if n1.Equal(n2, false) && signatureAgrees(n1, n2) {
					r.mp.addMatched(n1, n2)
					break
				}
			}
		}
	}
}

// signatureAgrees applies the per-kind checks on top of descriptor equality.
func signatureAgrees(b, a *decl.Node) bool {
	db, da := b.Declaration(), a.Declaration()
	switch b.Kind() {
	case models.KindField, models.KindAnnotationMember:
		return db.FieldType == da.FieldType
	case models.KindMethod:
		if db.ParamSignature() != da.ParamSignature() {
			return false
		}
		if db.TypeParamSignature() != da.TypeParamSignature() {
			return false
		}
		if db.HasReturnType != da.HasReturnType {
			return false
		}
		return !db.HasReturnType || db.ReturnType == da.ReturnType
	default:
		return b.Kind().IsContainer()
	}
}
