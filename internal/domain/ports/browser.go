package ports

// BrowserLauncher opens the preview in a browser
type BrowserLauncher interface {
	// Open opens url in the preferred browser without waiting for it to exit
	Open(url string) error
	// Detect returns the name of the browser Open would use
	Detect() (string, error)
}
