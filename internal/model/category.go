package model

// Category is a server-side grouping for scripts. The server is the source
// of truth; the engine never creates or mutates categories.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}
