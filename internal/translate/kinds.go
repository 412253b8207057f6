package translate

import "go.lsp.dev/protocol"

// tsserver completion-entry kind strings.
const (
	kindPrimitiveType     = "primitiveType"
	kindKeyword           = "keyword"
	kindConstElement      = "constElement"
	kindString            = "string"
	kindLetElement        = "letElement"
	kindVariableElement   = "variableElement"
	kindLocalVariable     = "localVariableElement"
	kindAlias             = "alias"
	kindMemberVariable    = "memberVariableElement"
	kindMemberGetAccessor = "memberGetAccessorElement"
	kindMemberSetAccessor = "memberSetAccessorElement"
	kindFunctionElement   = "functionElement"
	kindMemberFunction    = "memberFunctionElement"
	kindConstructSig      = "constructSignatureElement"
	kindCallSig           = "callSignatureElement"
	kindIndexSig          = "indexSignatureElement"
	kindEnumElement       = "enumElement"
	kindModuleElement     = "moduleElement"
	kindExternalModule    = "externalModuleName"
	kindClassElement      = "classElement"
	kindTypeElement       = "typeElement"
	kindInterfaceElement  = "interfaceElement"
	kindWarning           = "warning"
	kindScriptElement     = "scriptElement"
	kindDirectory         = "directory"
)

// ToCompletionItemKind maps a tsserver completion entry kind string to
// its LSP CompletionItemKind, per the fixed table of spec.md §6.3.
func ToCompletionItemKind(kind string) protocol.CompletionItemKind {
	switch kind {
	case kindPrimitiveType, kindKeyword:
		return protocol.CompletionItemKindKeyword
	case kindConstElement, kindString:
		return protocol.CompletionItemKindConstant
	case kindLetElement, kindVariableElement, kindLocalVariable, kindAlias:
		return protocol.CompletionItemKindVariable
	case kindMemberVariable, kindMemberGetAccessor, kindMemberSetAccessor:
		return protocol.CompletionItemKindField
	case kindFunctionElement:
		return protocol.CompletionItemKindFunction
	case kindMemberFunction, kindConstructSig, kindCallSig, kindIndexSig:
		return protocol.CompletionItemKindMethod
	case kindEnumElement:
		return protocol.CompletionItemKindEnum
	case kindModuleElement, kindExternalModule:
		return protocol.CompletionItemKindModule
	case kindClassElement, kindTypeElement:
		return protocol.CompletionItemKindClass
	case kindInterfaceElement:
		return protocol.CompletionItemKindInterface
	case kindWarning, kindScriptElement:
		return protocol.CompletionItemKindFile
	case kindDirectory:
		return protocol.CompletionItemKindFolder
	default:
		return protocol.CompletionItemKindProperty
	}
}

// ToSymbolKind maps a tsserver navtree/navto kind string to its LSP
// SymbolKind, following the analogous table of spec.md §6.3.
func ToSymbolKind(kind string) protocol.SymbolKind {
	switch kind {
	case kindClassElement:
		return protocol.SymbolKindClass
	case kindInterfaceElement:
		return protocol.SymbolKindInterface
	case kindEnumElement:
		return protocol.SymbolKindEnum
	case kindModuleElement, kindExternalModule:
		return protocol.SymbolKindModule
	case kindMemberFunction, kindConstructSig, kindCallSig, kindIndexSig:
		return protocol.SymbolKindMethod
	case kindMemberVariable, kindMemberGetAccessor, kindMemberSetAccessor:
		return protocol.SymbolKindField
	case kindLetElement, kindVariableElement, kindLocalVariable, kindAlias:
		return protocol.SymbolKindVariable
	case kindConstElement:
		return protocol.SymbolKindConstant
	case kindScriptElement:
		return protocol.SymbolKindFile
	case kindFunctionElement:
		return protocol.SymbolKindFunction
	default:
		return protocol.SymbolKindProperty
	}
}

// Kind-modifier tokens of interest, spec.md §6.3.
const (
	ModifierOptional   = "optional"
	ModifierDeprecated = "deprecated"
)

// File-extension kind modifiers tsserver attaches to script-kind
// completion entries.
var extensionModifiers = []string{".d.ts", ".tsx", ".ts", ".jsx", ".js"}

// HasModifier reports whether the comma-separated kindModifiers string
// contains modifier.
func HasModifier(modifiers, modifier string) bool {
	if modifiers == "" {
		return false
	}
	for _, m := range splitModifiers(modifiers) {
		if m == modifier {
			return true
		}
	}
	return false
}

// ExtensionModifier returns the file-extension modifier present in
// modifiers, if any, checking the longest extensions first so ".d.ts"
// is preferred over ".ts".
func ExtensionModifier(modifiers string) (string, bool) {
	for _, ext := range extensionModifiers {
		if HasModifier(modifiers, ext) {
			return ext, true
		}
	}
	return "", false
}

func splitModifiers(modifiers string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(modifiers); i++ {
		if i == len(modifiers) || modifiers[i] == ',' {
			if i > start {
				out = append(out, modifiers[start:i])
			}
			start = i + 1
		}
	}
	return out
}
