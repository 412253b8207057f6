package completion

// tsserver completion-entry kind strings relevant to commit characters,
// snippet formatting, and entry filtering. Distinct from (and narrower
// than) internal/translate's kind-mapping table, which maps every kind
// to an LSP CompletionItemKind; this file only names the kinds the
// pipeline itself branches on.
const (
	kindMemberGetAccessor = "memberGetAccessorElement"
	kindMemberSetAccessor = "memberSetAccessorElement"
	kindConstructSig      = "constructSignatureElement"
	kindCallSig           = "callSignatureElement"
	kindIndexSig          = "indexSignatureElement"
	kindEnum              = "enumElement"
	kindInterface         = "interfaceElement"

	kindModule         = "moduleElement"
	kindExternalModule = "externalModuleName"
	kindAlias          = "alias"
	kindConst          = "constElement"
	kindLet            = "letElement"
	kindVariable       = "variableElement"
	kindLocalVariable  = "localVariableElement"
	kindMemberVariable = "memberVariableElement"
	kindClass          = "classElement"
	kindFunction       = "functionElement"
	kindMemberFunction = "memberFunctionElement"

	kindWarning  = "warning"
	kindDirectory = "directory"
	kindScript    = "script"
)

var dotCommitKinds = map[string]bool{
	kindMemberGetAccessor: true,
	kindMemberSetAccessor: true,
	kindConstructSig:      true,
	kindCallSig:           true,
	kindIndexSig:          true,
	kindEnum:              true,
	kindInterface:         true,
}

var wideCommitKinds = map[string]bool{
	kindModule:         true,
	kindExternalModule: true,
	kindAlias:          true,
	kindConst:          true,
	kindLet:            true,
	kindVariable:       true,
	kindLocalVariable:  true,
	kindMemberVariable: true,
	kindClass:          true,
	kindFunction:       true,
	kindMemberFunction: true,
}

// commitCharacters returns the commit-character set for a completion
// entry kind, per the fixed table of spec.md §4.5 step 2.
func commitCharacters(kind string) []string {
	switch {
	case dotCommitKinds[kind]:
		return []string{"."}
	case wideCommitKinds[kind]:
		return []string{".", ",", "("}
	default:
		return nil
	}
}

func isFunctionLike(kind string) bool {
	return kind == kindFunction || kind == kindMemberFunction
}
