package highlight

import "github.com/alecthomas/chroma/v2"

// StyleID is a closed palette of syntax-highlight styles. HighlightCache
// never emits a style outside this set, so the renderer's color table stays
// fixed regardless of language.
type StyleID int

const (
	StyleDefault StyleID = iota
	StyleKeyword
	StyleType
	StyleFunction
	StyleString
	StyleNumber
	StyleComment
	StyleOperator
	StylePunctuation
	StyleVariable
	StyleConstant
	StyleProperty
	StyleAttribute
)

// styleFromTokenType maps a chroma token type to our closed palette. Unknown
// or unmapped token types fall back to StyleDefault.
func styleFromTokenType(t chroma.TokenType) StyleID {
	switch {
	case t.InCategory(chroma.Keyword):
		return StyleKeyword
	case t == chroma.NameClass, t == chroma.NameNamespace, t == chroma.NameTag, t == chroma.KeywordType:
		return StyleType
	case t == chroma.NameFunction, t == chroma.NameFunctionMagic:
		return StyleFunction
	case t.InCategory(chroma.LiteralString):
		return StyleString
	case t.InCategory(chroma.LiteralNumber):
		return StyleNumber
	case t.InCategory(chroma.Comment):
		return StyleComment
	case t.InCategory(chroma.Operator):
		return StyleOperator
	case t.InCategory(chroma.Punctuation):
		return StylePunctuation
	case t == chroma.NameVariable, t == chroma.NameVariableGlobal, t == chroma.NameVariableInstance, t == chroma.NameVariableMagic:
		return StyleVariable
	case t == chroma.NameConstant, t == chroma.KeywordConstant, t == chroma.NameBuiltinPseudo:
		return StyleConstant
	case t == chroma.NameProperty:
		return StyleProperty
	case t == chroma.NameAttribute, t == chroma.NameDecorator:
		return StyleAttribute
	default:
		return StyleDefault
	}
}
