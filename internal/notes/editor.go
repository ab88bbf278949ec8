package notes

// Editor is the rich-text editor the two-phase edit reads from and seeds.
type Editor interface {
	Content() string
	SetContent(html string)
	Clear()
}

// Buffer is an in-memory Editor used when no front-end editor is attached.
type Buffer struct {
	html string
}

func (b *Buffer) Content() string        { return b.html }
func (b *Buffer) SetContent(html string) { b.html = html }
func (b *Buffer) Clear()                 { b.html = "" }
