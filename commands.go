package sketch

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Quit asks Run to return before the next tick.
func (cmd *Commands) Quit() {
	cmd.app.quit()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// Ticks returns the number of ticks completed before the current one.
func (cmd *Commands) Ticks() uint64 {
	return cmd.app.ticks
}
