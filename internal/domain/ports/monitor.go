package ports

import "time"

// Monitor records runtime activity of the preview server
type Monitor interface {
	RecordParse(slides int, duration time.Duration)
	RecordReload(err error)
	RecordHTTPRequest(status int)
	RecordConnection(open bool)
	Health() map[string]interface{}
}
