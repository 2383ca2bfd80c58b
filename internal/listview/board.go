package listview

import (
	"html/template"
	"io"
	"sync"
)

var entriesTemplate = template.Must(template.New("entries").Parse(`{{range .}}<li class="workout workout--{{.Kind}}" data-id="{{.ID}}">
  <div class="close-btn" data-control="close">x</div>
  <h2 class="workout__title">{{.Title}}</h2>
{{- range .Details}}
  <div class="workout__details">
    <span class="workout__icon">{{.Icon}}</span>
    <span class="workout__value">{{.Value}}</span>
    <span class="workout__unit">{{.Unit}}</span>
  </div>
{{- end}}
</li>
{{end}}`))

// Board is an in-process List that frontends read through Entries or RenderHTML.
type Board struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewBoard returns an empty Board.
func NewBoard() *Board {
	return &Board{}
}

// Append implements List.
func (b *Board) Append(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
}

// Remove implements List.
func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if e.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries copies the entries in insertion order.
func (b *Board) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// RenderHTML writes the entries as escaped <li> fragments.
func (b *Board) RenderHTML(w io.Writer) error {
	return entriesTemplate.Execute(w, b.Entries())
}
