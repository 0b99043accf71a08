package model

// Frame is a snapshot of one folder level the user has drilled into.
type Frame struct {
	ID       string
	Title    string
	Children []Node
}
