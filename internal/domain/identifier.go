package domain

// IdentifierKind says which field an Identifier matches against.
type IdentifierKind int

const (
	IdentByUsername IdentifierKind = iota + 1
	IdentByEmail
)

// Identifier is a tagged username-or-email lookup key, resolved once at the
// boundary instead of threading two nullable strings through every layer.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

func ByUsername(v string) Identifier { return Identifier{Kind: IdentByUsername, Value: v} }
func ByEmail(v string) Identifier   { return Identifier{Kind: IdentByEmail, Value: v} }

func (i Identifier) IsZero() bool { return i.Kind == 0 || i.Value == "" }
