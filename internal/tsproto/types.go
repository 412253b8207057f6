package tsproto

// Location is a 1-based tsserver line/offset pair — the mirror image of
// position.Position, which is 0-based.
type Location struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// TextSpan is a 1-based tsserver range within a single (implicit) file.
type TextSpan struct {
	Start Location `json:"start"`
	End   Location `json:"end"`
}

// FileSpan is a TextSpan qualified with the file it applies to.
type FileSpan struct {
	File  string `json:"file"`
	Start Location `json:"start"`
	End   Location `json:"end"`
}

// CodeEdit is a single text replacement within a file already identified
// by its containing FileCodeEdits.
type CodeEdit struct {
	Start   Location `json:"start"`
	End     Location `json:"end"`
	NewText string   `json:"newText"`
}

// FileCodeEdits groups edits for one file, the shape tsserver uses for
// every multi-file edit-producing command (organizeImports, refactors,
// code fixes, file rename).
type FileCodeEdits struct {
	FileName    string     `json:"fileName"`
	TextChanges []CodeEdit `json:"textChanges"`
}

// Severity categories a tsserver Diagnostic can carry.
const (
	CategoryError      = "error"
	CategoryWarning    = "warning"
	CategorySuggestion = "suggestion"
	CategoryMessage    = "message"
)

// Diagnostic is one entry of a semanticDiag/syntaxDiag/suggestionDiag
// event.
type Diagnostic struct {
	Start               Location                       `json:"start"`
	End                 Location                       `json:"end"`
	Text                string                         `json:"text"`
	Code                int                            `json:"code,omitempty"`
	Category            string                         `json:"category"`
	Source              string                         `json:"source,omitempty"`
	RelatedInformation  []DiagnosticRelatedInformation `json:"relatedInformation,omitempty"`
	ReportsUnnecessary  bool                            `json:"reportsUnnecessary,omitempty"`
	ReportsDeprecated   bool                            `json:"reportsDeprecated,omitempty"`
}

// DiagnosticRelatedInformation cross-references another location, e.g.
// "'x' is declared here".
type DiagnosticRelatedInformation struct {
	Span    FileSpan `json:"span"`
	Message string   `json:"message"`
}

// SymbolDisplayPart is one classified run of text in a rendered
// signature, hover, or documentation string.
type SymbolDisplayPart struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// JSDocTagInfo is a single @tag entry from a symbol's JSDoc comment.
type JSDocTagInfo struct {
	Name string              `json:"name"`
	Text []SymbolDisplayPart `json:"text,omitempty"`
}

// CompletionEntry is one item of a completionInfo response.
type CompletionEntry struct {
	Name            string             `json:"name"`
	Kind            string             `json:"kind"`
	KindModifiers   string             `json:"kindModifiers,omitempty"`
	SortText        string             `json:"sortText"`
	InsertText      string             `json:"insertText,omitempty"`
	FilterText      string             `json:"filterText,omitempty"`
	ReplacementSpan *TextSpan          `json:"replacementSpan,omitempty"`
	HasAction       bool               `json:"hasAction,omitempty"`
	Source          string             `json:"source,omitempty"`
	SourceDisplay   []SymbolDisplayPart `json:"sourceDisplay,omitempty"`
	IsRecommended   bool               `json:"isRecommended,omitempty"`
	IsSnippet       bool               `json:"isSnippet,omitempty"`
	IsPackageJsonImport bool           `json:"isPackageJsonImport,omitempty"`
}

// CompletionInfo is the body of a completionInfo response.
type CompletionInfo struct {
	IsGlobalCompletion      bool              `json:"isGlobalCompletion"`
	IsMemberCompletion      bool              `json:"isMemberCompletion"`
	IsNewIdentifierLocation bool              `json:"isNewIdentifierLocation"`
	Entries                 []CompletionEntry `json:"entries"`
}

// CodeAction is a set of edits (and optionally opaque follow-up commands)
// that a completion detail or code fix carries.
type CodeAction struct {
	Description string          `json:"description"`
	Changes     []FileCodeEdits `json:"changes"`
	Commands    []interface{}   `json:"commands,omitempty"`
}

// CompletionEntryDetails is the body of a completionEntryDetails
// response, one per requested entry name.
type CompletionEntryDetails struct {
	Name          string              `json:"name"`
	Kind          string              `json:"kind"`
	KindModifiers string              `json:"kindModifiers,omitempty"`
	DisplayParts  []SymbolDisplayPart `json:"displayParts"`
	Documentation []SymbolDisplayPart `json:"documentation,omitempty"`
	Tags          []JSDocTagInfo      `json:"tags,omitempty"`
	CodeActions   []CodeAction        `json:"codeActions,omitempty"`
	Source        []SymbolDisplayPart `json:"source,omitempty"`
}

// QuickInfo is the body of a quickinfo (hover) response.
type QuickInfo struct {
	Kind          string              `json:"kind"`
	KindModifiers string              `json:"kindModifiers"`
	Start         Location            `json:"start"`
	End           Location            `json:"end"`
	DisplayString string              `json:"displayString"`
	Documentation []SymbolDisplayPart `json:"documentation,omitempty"`
	Tags          []JSDocTagInfo      `json:"tags,omitempty"`
}

// DefinitionInfo is one entry of a definition/typeDefinition/
// implementation response.
type DefinitionInfo struct {
	File  string   `json:"file"`
	Start Location `json:"start"`
	End   Location `json:"end"`
}

// ReferenceEntry is one entry of a references response.
type ReferenceEntry struct {
	File          string   `json:"file"`
	Start         Location `json:"start"`
	End           Location `json:"end"`
	LineText      string   `json:"lineText,omitempty"`
	IsWriteAccess bool     `json:"isWriteAccess,omitempty"`
	IsDefinition  bool     `json:"isDefinition,omitempty"`
}

// ReferencesResponseBody is the body of a references response.
type ReferencesResponseBody struct {
	Refs       []ReferenceEntry `json:"refs"`
	SymbolName string           `json:"symbolName"`
}

// RenameInfo is the "can this be renamed" half of a rename response.
type RenameInfo struct {
	CanRename             bool     `json:"canRename"`
	LocalizedErrorMessage string   `json:"localizedErrorMessage,omitempty"`
	DisplayName           string   `json:"displayName,omitempty"`
	FullDisplayName       string   `json:"fullDisplayName,omitempty"`
	Kind                  string   `json:"kind,omitempty"`
	TriggerSpan           TextSpan `json:"triggerSpan"`
}

// RenameTextSpan is one occurrence to rewrite, with optional surrounding
// context used by editors to render a preview.
type RenameTextSpan struct {
	Start        Location  `json:"start"`
	End          Location  `json:"end"`
	ContextStart *Location `json:"contextStart,omitempty"`
	ContextEnd   *Location `json:"contextEnd,omitempty"`
}

// SpanGroup groups rename occurrences by file.
type SpanGroup struct {
	File string           `json:"file"`
	Locs []RenameTextSpan `json:"locs"`
}

// RenameResponseBody is the body of a rename response.
type RenameResponseBody struct {
	Info RenameInfo  `json:"info"`
	Locs []SpanGroup `json:"locs"`
}

// SignatureHelpParameter is one parameter of a SignatureHelpItem.
type SignatureHelpParameter struct {
	Name          string              `json:"name"`
	Documentation []SymbolDisplayPart `json:"documentation,omitempty"`
	DisplayParts  []SymbolDisplayPart `json:"displayParts"`
	IsOptional    bool                `json:"isOptional,omitempty"`
}

// SignatureHelpItem is one overload of a signatureHelp response.
type SignatureHelpItem struct {
	IsVariadic    bool                     `json:"isVariadic,omitempty"`
	Prefix        []SymbolDisplayPart      `json:"prefixDisplayParts"`
	Suffix        []SymbolDisplayPart      `json:"suffixDisplayParts"`
	Separator     []SymbolDisplayPart      `json:"separatorDisplayParts,omitempty"`
	Parameters    []SignatureHelpParameter `json:"parameters"`
	Documentation []SymbolDisplayPart      `json:"documentation,omitempty"`
}

// SignatureHelpItems is the body of a signatureHelp response.
type SignatureHelpItems struct {
	Items             []SignatureHelpItem `json:"items"`
	SelectedItemIndex int                 `json:"selectedItemIndex"`
	ArgumentIndex     int                 `json:"argumentIndex"`
	ApplicableSpan    TextSpan            `json:"applicableSpan"`
}

// OutliningSpan is one entry of a getOutliningSpans response.
type OutliningSpan struct {
	TextSpan TextSpan `json:"textSpan"`
	Kind     string   `json:"kind"`
}

// NavigationTree is one node of a navtree response, tsserver's recursive
// document-outline shape.
type NavigationTree struct {
	Text          string           `json:"text"`
	Kind          string           `json:"kind"`
	KindModifiers string           `json:"kindModifiers"`
	Spans         []TextSpan       `json:"spans"`
	NameSpan      *TextSpan        `json:"nameSpan,omitempty"`
	ChildItems    []NavigationTree `json:"childItems,omitempty"`
}

// NavtoItem is one entry of a navto (workspace symbol search) response.
type NavtoItem struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	KindModifiers string   `json:"kindModifiers,omitempty"`
	File          string   `json:"file"`
	Start         Location `json:"start"`
	End           Location `json:"end"`
	ContainerName string   `json:"containerName,omitempty"`
	ContainerKind string   `json:"containerKind,omitempty"`
}

// RefactorActionInfo is one action offered by an ApplicableRefactorInfo.
type RefactorActionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ApplicableRefactorInfo is one entry of a getApplicableRefactors
// response.
type ApplicableRefactorInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Actions     []RefactorActionInfo `json:"actions"`
}

// RefactorEditInfo is the body of a getEditsForRefactor response.
type RefactorEditInfo struct {
	Edits          []FileCodeEdits `json:"edits"`
	RenameFilename string          `json:"renameFilename,omitempty"`
	RenameLocation *Location       `json:"renameLocation,omitempty"`
}

// CodeFixAction is one entry of a getCodeFixes response.
type CodeFixAction struct {
	FixName     string          `json:"fixName"`
	Description string          `json:"description"`
	Changes     []FileCodeEdits `json:"changes"`
	Commands    []interface{}   `json:"commands,omitempty"`
}
