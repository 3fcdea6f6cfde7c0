package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"github.com/ginclub-dev/ginclub/shared/errors"
)

// widgetNames is the fixed set of documents the members page persists.
// Each widget is an opaque JSON document, last write wins.
var widgetNames = map[string]struct{}{
	"announcement": {},
	"kanban":       {},
	"polls":        {},
	"checklist":    {},
	"links":        {},
	"dates":        {},
	"notes":        {},
	"quiz":         {},
}

const (
	widgetKeyPrefix = "widget:"
	maxWidgetBytes  = 64 << 10
)

type WidgetsService interface {
	Get(name string) (json.RawMessage, error)
	Put(name string, doc json.RawMessage) error
	RenderNotes(markdown string) (string, error)
}

type Widgets struct {
	storage   KeyValue
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func NewWidgets(storage KeyValue) *Widgets {
	// Restricted parser: fenced code, code spans, emphasis and strikethrough
	// only. No raw HTML, no links, no headings.
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	return &Widgets{
		storage:   storage,
		md:        md,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func widgetKey(name string) (string, error) {
	if _, ok := widgetNames[name]; !ok {
		return "", &errors.ErrorWithStatusCode{Message: "Unknown widget", StatusCode: http.StatusNotFound}
	}
	return widgetKeyPrefix + name, nil
}

func (w *Widgets) Get(name string) (json.RawMessage, error) {
	key, err := widgetKey(name)
	if err != nil {
		return nil, err
	}

	raw, err := w.storage.Get(key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("Widget not saved yet")
		}
		return nil, fmt.Errorf("failed to read widget %s: %w", name, err)
	}
	return json.RawMessage(raw), nil
}

func (w *Widgets) Put(name string, doc json.RawMessage) error {
	key, err := widgetKey(name)
	if err != nil {
		return err
	}
	if len(doc) > maxWidgetBytes {
		return &errors.ErrorWithStatusCode{Message: "Widget document is too large", StatusCode: http.StatusRequestEntityTooLarge}
	}
	if !json.Valid(doc) {
		return &errors.ErrorWithStatusCode{Message: "Widget document is not valid json", StatusCode: http.StatusBadRequest}
	}

	if err := w.storage.Set(key, string(doc)); err != nil {
		return fmt.Errorf("failed to save widget %s: %w", name, err)
	}
	return nil
}

// RenderNotes turns notes-pad markdown into sanitized HTML for previewing.
func (w *Widgets) RenderNotes(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := w.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render notes: %w", err)
	}
	return w.sanitizer.Sanitize(buf.String()), nil
}
