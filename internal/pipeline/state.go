package pipeline

// State is a checkpoint in a single build run. Runs move through the
// states strictly in order and always end in StateDone.
type State string

const (
	StateInit            State = "init"
	StateAvatarResolved  State = "avatar_resolved"
	StateIconsConverted  State = "icons_converted"
	StateTemplateStaged  State = "template_staged"
	StateCompiledSuccess State = "compiled_success"
	StateCompiledFailure State = "compiled_failure"
	StateCleaned         State = "cleaned"
	StateDone            State = "done"
)

// totalSteps is the number of numbered steps printed during a run.
const totalSteps = 5
