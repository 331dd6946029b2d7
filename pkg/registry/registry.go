package registry

import "github.com/spf13/cobra"

// CommandRegistry collects sub-command constructors from package init
// functions so a parent command can attach them later.
type CommandRegistry struct {
	fns []func(*cobra.Command)
}

func (r *CommandRegistry) Register(fn func(*cobra.Command)) {
	r.fns = append(r.fns, fn)
}

// FillCommands attaches every registered sub-command to parent.
func (r *CommandRegistry) FillCommands(parent *cobra.Command) {
	for _, fn := range r.fns {
		fn(parent)
	}
}
