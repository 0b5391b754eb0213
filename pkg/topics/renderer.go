package topics

// Renderer formats topic content for terminal display
type Renderer interface {
	// Render formats content; format is the topic file's extension
	Render(content string, format string) string
}

// PlainRenderer passes content through untouched
type PlainRenderer struct{}

// Render returns the content unchanged
func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
