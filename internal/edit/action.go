package edit

// Wire tags for the closed set of action kinds. These are the values the
// type field of an incoming proposal carries and are preserved verbatim in
// results and history rows.
const (
	KindCreateFile              = "CREATE_FILE"
	KindCreateFolder            = "CREATE_FOLDER"
	KindEditFileComplete        = "EDIT_FILE_COMPLETE"
	KindEditFilePartial         = "EDIT_FILE_PARTIAL"
	KindEditFileContextual      = "EDIT_FILE_CONTEXTUAL"
	KindEditFileContextualBatch = "EDIT_FILE_CONTEXTUAL_BATCH"
	KindExecuteShellCommand     = "EXECUTE_SHELL_COMMAND"
	KindGeneralMessage          = "GENERAL_MESSAGE"
)

// Action is one entry of a proposal batch. Implementations form a closed
// set; consumers dispatch with a type switch and treat any unlisted kind as
// a decode-time error, never a silent skip.
type Action interface {
	Kind() string
	isAction()
}

// CreateFile writes a new file, overwriting any existing one at the path.
type CreateFile struct {
	Path    string
	Content string
}

func (CreateFile) Kind() string { return KindCreateFile }
func (CreateFile) isAction()    {}

// CreateFolder ensures a directory exists, parents included.
type CreateFolder struct {
	Path string
}

func (CreateFolder) Kind() string { return KindCreateFolder }
func (CreateFolder) isAction()    {}

// EditFileComplete replaces a file's entire content.
type EditFileComplete struct {
	Path    string
	Content string
}

func (EditFileComplete) Kind() string { return KindEditFileComplete }
func (EditFileComplete) isAction()    {}

// EditFilePartial applies line-addressed edits to one file. All edits
// address the original line numbering; application is atomic per file.
type EditFilePartial struct {
	Path  string
	Edits []LineEdit
}

func (EditFilePartial) Kind() string { return KindEditFilePartial }
func (EditFilePartial) isAction()    {}

// EditFileContextual applies a single content-anchored edit to one file.
type EditFileContextual struct {
	Path string
	Edit ContextEdit
}

func (EditFileContextual) Kind() string { return KindEditFileContextual }
func (EditFileContextual) isAction()    {}

// EditFileContextualBatch applies several content-anchored edits to one
// file in order, each resolving against the content produced by its
// predecessors. Application is atomic per file.
type EditFileContextualBatch struct {
	Path  string
	Edits []ContextEdit
}

func (EditFileContextualBatch) Kind() string { return KindEditFileContextualBatch }
func (EditFileContextualBatch) isAction()    {}

// ExecuteShellCommand runs a command in the workspace root.
type ExecuteShellCommand struct {
	Command string
}

func (ExecuteShellCommand) Kind() string { return KindExecuteShellCommand }
func (ExecuteShellCommand) isAction()    {}

// GeneralMessage carries prose from the proposer. It mutates nothing and is
// reported as skipped.
type GeneralMessage struct {
	Message string
}

func (GeneralMessage) Kind() string { return KindGeneralMessage }
func (GeneralMessage) isAction()    {}

// Target returns the path or command an action operates on, empty for
// kinds without one.
func Target(a Action) string {
	switch v := a.(type) {
	case CreateFile:
		return v.Path
	case CreateFolder:
		return v.Path
	case EditFileComplete:
		return v.Path
	case EditFilePartial:
		return v.Path
	case EditFileContextual:
		return v.Path
	case EditFileContextualBatch:
		return v.Path
	case ExecuteShellCommand:
		return v.Command
	default:
		return ""
	}
}
