package registry

// Service is a long-lived node task with its own goroutine.
type Service interface {
	// Start launches the task. Starting a running task returns an error.
	Start() error
	// Stop cancels the task and waits for it to return.
	Stop() error
}
