package expat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libexpat/goexpat/sax"
)

// eventRecorder accumulates a flat trace of callback invocations so
// tests can assert on event order without building a tree.
type eventRecorder struct {
	events []string
}

func (r *eventRecorder) record(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func newRecordingHandler(r *eventRecorder) *sax.Handler {
	h := sax.New()
	h.StartElementHandler = func(ctx sax.Context, elem sax.ParsedElement) error {
		r.record("start:%s", elem.Name())
		for _, a := range elem.Attributes() {
			r.record("attr:%s=%s", a.LocalName(), a.Value())
		}
		return nil
	}
	h.EndElementHandler = func(ctx sax.Context, elem sax.ParsedElement) error {
		r.record("end:%s", elem.Name())
		return nil
	}
	h.CharactersHandler = func(ctx sax.Context, content []byte) error {
		r.record("chars:%s", string(content))
		return nil
	}
	h.StartDTDHandler = func(ctx sax.Context, name, publicID, systemID string) error {
		r.record("startdtd:%s", name)
		return nil
	}
	h.EndDTDHandler = func(ctx sax.Context) error {
		r.record("enddtd")
		return nil
	}
	h.InternalEntityDeclHandler = func(ctx sax.Context, name, value string) error {
		r.record("entitydecl:%s=%s", name, value)
		return nil
	}
	h.StartCDATAHandler = func(ctx sax.Context) error {
		r.record("startcdata")
		return nil
	}
	h.EndCDATAHandler = func(ctx sax.Context) error {
		r.record("endcdata")
		return nil
	}
	return h
}

func TestParse_MinimalSelfClosingRoot(t *testing.T) {
	rec := &eventRecorder{}
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(rec))
	require.NoError(t, p.Parse([]byte(`<a/>`), true))
	assert.Equal(t, []string{"start:a", "end:a"}, rec.events)
}

func TestParse_DuplicateAttributeIsError(t *testing.T) {
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(&eventRecorder{}))
	err := p.Parse([]byte(`<a x="1" x="2"/>`), true)
	require.Error(t, err)
	assert.Equal(t, ErrDuplicateAttributeCode, p.ErrorCode())
}

func TestParse_MismatchedEndTagIsError(t *testing.T) {
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(&eventRecorder{}))
	err := p.Parse([]byte(`<a><b></c></a>`), true)
	require.Error(t, err)
	assert.Equal(t, ErrTagMismatch, p.ErrorCode())
}

func TestParse_EntityReferenceSplitAcrossCalls(t *testing.T) {
	rec := &eventRecorder{}
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(rec))
	require.NoError(t, p.Parse([]byte(`<a>&am`), false))
	require.NoError(t, p.Parse([]byte(`p;</a>`), true))
	assert.Equal(t, []string{"start:a", "chars:&", "end:a"}, rec.events)
}

func TestParse_DoctypeWithInternalEntityExpansion(t *testing.T) {
	rec := &eventRecorder{}
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(rec))
	doc := `<!DOCTYPE a [<!ENTITY greeting "hello">]><a>&greeting;</a>`
	require.NoError(t, p.Parse([]byte(doc), true))
	assert.Contains(t, rec.events, "entitydecl:greeting=hello")
	assert.Contains(t, rec.events, "chars:hello")
}

func TestParse_CDataSectionWithMarkupLikeText(t *testing.T) {
	rec := &eventRecorder{}
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(rec))
	doc := `<a><![CDATA[<b>not an element</b>]]></a>`
	require.NoError(t, p.Parse([]byte(doc), true))
	assert.Equal(t, []string{
		"start:a", "startcdata", "chars:<b>not an element</b>", "endcdata", "end:a",
	}, rec.events)
}

func TestParse_NoRootElementIsError(t *testing.T) {
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(&eventRecorder{}))
	err := p.Parse([]byte(`   `), true)
	require.Error(t, err)
	assert.Equal(t, ErrNoElements, p.ErrorCode())
}

func TestParse_AttributeDefaultFromAttlist(t *testing.T) {
	rec := &eventRecorder{}
	p := NewParser()
	p.SetSAXHandler(newRecordingHandler(rec))
	doc := `<!DOCTYPE a [<!ATTLIST a lang CDATA "en">]><a/>`
	require.NoError(t, p.Parse([]byte(doc), true))
	assert.Contains(t, rec.events, "attr:lang=en")
}
