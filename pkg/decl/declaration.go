package decl

import "strings"

// Param is one declared parameter type.
type Param struct {
	Type    string
	Varargs bool
}

// Signature renders the parameter type, with varargs as an array suffix.
func (p Param) Signature() string {
	if p.Varargs {
		return p.Type + "[]"
	}
	return p.Type
}

// Declaration is the textual part of a declared entity.
type Declaration struct {
	// Text is the normalized source of the whole declaration: comments
	// stripped and tokens joined by single spaces.
	Text   string
	Tokens []string
	// HeaderTokens are the tokens before the body of a container.
	HeaderTokens []string

	FieldType     string
	ReturnType    string
	HasReturnType bool
	Params        []Param
	TypeParams    []string
	Public        bool
}

// NewDeclaration builds a declaration from its tokens.
func NewDeclaration(tokens []string) Declaration {
	return Declaration{
		Text:   strings.Join(tokens, " "),
		Tokens: tokens,
	}
}

// ParamSignature joins the parameter types with commas.
func (d Declaration) ParamSignature() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Signature()
	}
	return strings.Join(parts, ",")
}

// ParamTypes returns the rendered parameter types.
func (d Declaration) ParamTypes() []string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Signature()
	}
	return parts
}

// TypeParamSignature joins the type parameters with commas.
func (d Declaration) TypeParamSignature() string {
	return strings.Join(d.TypeParams, ",")
}

func (d Declaration) String() string { return d.Text }
