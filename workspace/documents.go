// Package workspace keeps the text of open documents, persists generated
// files, applies text edits and reports where builders could be generated.
package workspace

import (
	"sort"
	"sync"
)

type Document struct {
	URI     string
	Text    string
	Version int32
}

// Documents is the set of documents an editor has open. It is safe for
// concurrent use.
type Documents struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewDocuments() *Documents {
	return &Documents{docs: make(map[string]*Document)}
}

func (d *Documents) Open(uri, text string, version int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs[uri] = &Document{URI: uri, Text: text, Version: version}
}

// Update replaces the text of uri, opening it if needed.
func (d *Documents) Update(uri, text string, version int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.docs[uri]
	if !ok {
		d.docs[uri] = &Document{URI: uri, Text: text, Version: version}
		return
	}
	doc.Text = text
	doc.Version = version
}

func (d *Documents) Close(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.docs, uri)
}

func (d *Documents) Get(uri string) (Document, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// URIs lists the open documents, sorted.
func (d *Documents) URIs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	uris := make([]string, 0, len(d.docs))
	for uri := range d.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
