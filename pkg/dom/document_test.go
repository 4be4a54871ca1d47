package dom

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/errors"
)

const sample = `<html><body>
<div id="a" x-data>
  <p id="p1"></p>
  <section id="b" x-data>
    <span id="c" x-init="go()"></span>
  </section>
</div>
<p id="p2" class="note big"></p>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

func ids(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		id, _ := GetAttribute(n, "id")
		out = append(out, id)
	}
	return out
}

func TestWalk_PreOrder(t *testing.T) {
	doc := mustParse(t, sample)
	var visited []string
	Walk(doc.GetElementByID("a"), func(el *html.Node) WalkAction {
		visited = append(visited, Describe(el))
		return Continue
	})
	want := []string{"div#a", "p#p1", "section#b", "span#c"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("visited = %v, want %v", visited, want)
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	doc := mustParse(t, sample)
	var visited []string
	Walk(doc.Body(), func(el *html.Node) WalkAction {
		id, _ := GetAttribute(el, "id")
		visited = append(visited, id)
		if id == "b" {
			return SkipChildren
		}
		return Continue
	})
	want := []string{"", "a", "p1", "b", "p2"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("visited = %v, want %v", visited, want)
	}
}

func TestWalk_DocumentNodeVisitsDescendantsOnly(t *testing.T) {
	doc := mustParse(t, `<p></p>`)
	var first string
	Walk(doc.Root(), func(el *html.Node) WalkAction {
		if first == "" {
			first = el.Data
		}
		return Continue
	})
	if first != "html" {
		t.Errorf("first visited = %q, want html", first)
	}
}

func TestQuerySelectorAll_DocumentOrderUnion(t *testing.T) {
	doc := mustParse(t, sample)
	got, err := doc.QuerySelectorAll("[x-init]", "[x-data]")
	if err != nil {
		t.Fatalf("QuerySelectorAll: %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("ids = %v, want %v", ids(got), want)
	}

	none, err := doc.QuerySelectorAll()
	if err != nil || len(none) != 0 {
		t.Errorf("QuerySelectorAll() = %v, %v; want empty", none, err)
	}
}

func TestMatches(t *testing.T) {
	doc := mustParse(t, sample)
	p2 := doc.GetElementByID("p2")

	ok, err := doc.Matches(p2, "p.note")
	if err != nil || !ok {
		t.Errorf("Matches(p.note) = %v, %v; want true", ok, err)
	}
	ok, err = doc.Matches(doc.Root(), "*")
	if err != nil || ok {
		t.Errorf("document node should never match, got %v, %v", ok, err)
	}

	_, err = doc.Matches(p2, "[[broken")
	var werr *errors.WeftError
	if !stderrors.As(err, &werr) || werr.Kind != errors.KindSelector {
		t.Errorf("expected selector WeftError, got %v", err)
	}
}

func TestMutations_RecordedForConnectedNodes(t *testing.T) {
	doc := mustParse(t, sample)
	var records []MutationRecord
	cancel := doc.Observe(func(r MutationRecord) { records = append(records, r) })

	el := doc.CreateElement("em", html.Attribute{Key: "x-init"})
	el.AppendChild(doc.CreateElement("b"))
	doc.SetAttribute(el, "data-k", "detached")
	if len(records) != 0 {
		t.Fatalf("detached mutations should not be recorded, got %d", len(records))
	}

	body := doc.Body()
	doc.AppendChild(body, el)
	doc.SetAttribute(el, "title", "x")
	doc.SetAttribute(el, "title", "y")
	doc.RemoveAttribute(el, "title")
	doc.RemoveAttribute(el, "missing")
	doc.RemoveChild(el)

	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	if r := records[0]; r.Type != ChildList || r.Target != body || len(r.Added) != 1 || r.Added[0] != el {
		t.Errorf("unexpected add record %+v", r)
	}
	if r := records[1]; r.Type != AttributeChange || r.HadOldValue {
		t.Errorf("first set should have no old value: %+v", r)
	}
	if r := records[2]; !r.HadOldValue || r.OldValue != "x" {
		t.Errorf("second set should carry old value x: %+v", r)
	}
	if r := records[3]; r.AttributeName != "title" || r.OldValue != "y" {
		t.Errorf("unexpected remove-attribute record %+v", r)
	}
	if r := records[4]; len(r.Removed) != 1 || r.Removed[0] != el {
		t.Errorf("unexpected removal record %+v", r)
	}
	if doc.IsConnected(el) {
		t.Error("removed element should be disconnected")
	}

	cancel()
	doc.AppendChild(body, el)
	if len(records) != 5 {
		t.Error("cancelled observer should receive nothing")
	}
}

func TestAttributes_CopyAndChangeRecords(t *testing.T) {
	doc := mustParse(t, sample)
	var records []MutationRecord
	defer doc.Observe(func(r MutationRecord) { records = append(records, r) })()

	el := doc.CreateElement("em", html.Attribute{Key: "x-init", Val: "go()"})
	doc.AppendChild(doc.Body(), el)

	attrs := Attributes(el)
	attrs[0].Val = "changed"
	if v, _ := GetAttribute(el, "x-init"); v != "go()" {
		t.Errorf("Attributes should return a copy, element now has %q", v)
	}

	doc.SetAttribute(el, "x-init", "again()")
	doc.RemoveAttribute(el, "x-init")
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for _, r := range records[1:] {
		if r.Type != AttributeChange || r.AttributeName != "x-init" {
			t.Errorf("expected x-init attribute change, got %+v", r)
		}
	}
	if len(Attributes(el)) != 0 {
		t.Errorf("Attributes after removal = %v, want none", Attributes(el))
	}
}

func TestAppendChild_MoveRecordsRemoveThenAdd(t *testing.T) {
	doc := mustParse(t, sample)
	var types []string
	doc.Observe(func(r MutationRecord) {
		if len(r.Removed) > 0 {
			types = append(types, "removed")
		}
		if len(r.Added) > 0 {
			types = append(types, "added")
		}
	})
	doc.AppendChild(doc.Body(), doc.GetElementByID("p1"))
	if want := []string{"removed", "added"}; !reflect.DeepEqual(types, want) {
		t.Errorf("records = %v, want %v", types, want)
	}
}

func TestReplaceChild(t *testing.T) {
	doc := mustParse(t, sample)
	old := doc.GetElementByID("p1")
	repl := doc.CreateElement("p", html.Attribute{Key: "id", Val: "p1b"})
	doc.ReplaceChild(repl, old)

	if old.Parent != nil {
		t.Error("old node should be detached")
	}
	if first := FirstElementChild(doc.GetElementByID("a")); first != repl {
		t.Errorf("replacement should take the old position, got %s", Describe(first))
	}
}

func TestEvents(t *testing.T) {
	doc := New()
	var got []string
	remove := doc.AddEventListener("weft:init", func(e Event) {
		got = append(got, "first:"+e.Name)
	})
	doc.AddEventListener("weft:init", func(e Event) {
		got = append(got, "second:"+e.Name)
	})

	doc.Dispatch("weft:init")
	remove()
	doc.Dispatch("weft:init")
	doc.Dispatch("other")

	want := []string{"first:weft:init", "second:weft:init", "second:weft:init"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestBody(t *testing.T) {
	if New().Body() != nil {
		t.Error("empty document should have no body")
	}
	if b := mustParse(t, sample).Body(); b == nil || b.Data != "body" {
		t.Error("parsed document should have a body")
	}
}

func TestDescribe(t *testing.T) {
	doc := mustParse(t, sample)
	if got := Describe(doc.GetElementByID("p2")); got != "p#p2.note.big" {
		t.Errorf("Describe = %q", got)
	}
	if got := Describe(nil); got != "<nil>" {
		t.Errorf("Describe(nil) = %q", got)
	}
}

func TestRender(t *testing.T) {
	doc := mustParse(t, `<p id="x">hi</p>`)
	var sb strings.Builder
	if err := doc.Render(&sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), `<p id="x">hi</p>`) {
		t.Errorf("unexpected render %q", sb.String())
	}
}
