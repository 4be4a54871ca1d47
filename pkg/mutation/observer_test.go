package mutation

import (
	"reflect"
	"testing"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/loop"
)

type recorder struct {
	events []string
}

func (r *recorder) add(format string, el *html.Node) {
	r.events = append(r.events, format+" "+dom.Describe(el))
}

func setup(t *testing.T, src string) (*dom.Document, *loop.Loop, *Observer, *recorder) {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	l := loop.New()
	o := NewObserver(doc, l)
	rec := &recorder{}
	o.OnElAdded(func(el *html.Node) { rec.add("added", el) })
	o.OnElRemoved(func(el *html.Node) { rec.add("removed", el) })
	o.OnAttributesAdded(func(el *html.Node, attrs []html.Attribute) {
		for _, a := range attrs {
			rec.add("attr:"+a.Key+"="+a.Val, el)
		}
	})
	o.Start()
	return doc, l, o, rec
}

const page = `<body><div id="host"><p id="keep"></p></div></body>`

func TestAddedElementDeliveredInMicrotask(t *testing.T) {
	doc, l, _, rec := setup(t, page)
	doc.AppendChild(doc.GetElementByID("host"), doc.CreateElement("span"))

	if len(rec.events) != 0 {
		t.Fatal("delivery must not be synchronous")
	}
	l.RunUntilIdle()
	if want := []string{"added span"}; !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestNestedAdditionsDeliverOutermostOnly(t *testing.T) {
	doc, l, _, rec := setup(t, page)
	outer := doc.CreateElement("ul")
	doc.AppendChild(doc.GetElementByID("host"), outer)
	doc.AppendChild(outer, doc.CreateElement("li"))
	l.RunUntilIdle()

	if want := []string{"added ul"}; !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestMoveIsNotRemovalOrAddition(t *testing.T) {
	doc, l, _, rec := setup(t, page)
	doc.AppendChild(doc.Body(), doc.GetElementByID("keep"))
	l.RunUntilIdle()

	if len(rec.events) != 0 {
		t.Errorf("move should be silent, got %v", rec.events)
	}
}

func TestChildAddedIntoMovedParentIsDelivered(t *testing.T) {
	doc, l, _, rec := setup(t, page)
	host := doc.GetElementByID("host")
	doc.AppendChild(host, doc.CreateElement("em"))
	doc.AppendChild(doc.Body(), host)
	l.RunUntilIdle()

	if want := []string{"added em"}; !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestAddedThenRemovedInSameBatchIsDropped(t *testing.T) {
	doc, l, _, rec := setup(t, page)
	el := doc.CreateElement("span")
	doc.AppendChild(doc.Body(), el)
	doc.RemoveChild(el)
	l.RunUntilIdle()

	if len(rec.events) != 0 {
		t.Errorf("expected no events, got %v", rec.events)
	}
}

func TestRemovedElement(t *testing.T) {
	doc, l, _, rec := setup(t, page)
	doc.RemoveChild(doc.GetElementByID("keep"))
	l.RunUntilIdle()

	if want := []string{"removed p#keep"}; !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestAttributeLifecycle(t *testing.T) {
	doc, l, o, rec := setup(t, page)
	keep := doc.GetElementByID("keep")

	var cleaned []string
	o.OnAttributeRemoved(keep, "x-text", func() { cleaned = append(cleaned, "x-text") })

	doc.SetAttribute(keep, "x-show", "open")
	l.RunUntilIdle()
	if want := []string{"attr:x-show=open p#keep"}; !reflect.DeepEqual(rec.events, want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}

	rec.events = nil
	doc.SetAttribute(keep, "x-text", "a")
	doc.SetAttribute(keep, "x-text", "b")
	l.RunUntilIdle()
	if want := []string{"attr:x-text=b p#keep"}; !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	if want := []string{"x-text"}; !reflect.DeepEqual(cleaned, want) {
		t.Errorf("changing a value should run its cleanup, got %v", cleaned)
	}

	o.OnAttributeRemoved(keep, "x-show", func() { cleaned = append(cleaned, "x-show") })
	doc.RemoveAttribute(keep, "x-show")
	l.RunUntilIdle()
	if want := []string{"x-text", "x-show"}; !reflect.DeepEqual(cleaned, want) {
		t.Errorf("cleaned = %v, want %v", cleaned, want)
	}
}

func TestAttributesOnNewElementsAreLeftToInitialization(t *testing.T) {
	doc, l, _, rec := setup(t, page)
	el := doc.CreateElement("span")
	doc.AppendChild(doc.Body(), el)
	doc.SetAttribute(el, "x-init", "go()")
	l.RunUntilIdle()

	if want := []string{"added span"}; !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestCleanupAttributes(t *testing.T) {
	o := NewObserver(dom.New(), loop.New())
	el := &html.Node{Type: html.ElementNode, Data: "div"}

	var ran []string
	o.OnAttributeRemoved(el, "a", func() { ran = append(ran, "a") })
	o.OnAttributeRemoved(el, "b", func() { ran = append(ran, "b") })
	o.OnAttributeRemoved(el, "c", func() { ran = append(ran, "c") })

	o.CleanupAttributes(el, "b")
	o.CleanupAttributes(el)
	o.CleanupAttributes(el)

	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(ran, want) {
		t.Errorf("ran = %v, want %v", ran, want)
	}
}

func TestMutateSuppressesRecords(t *testing.T) {
	doc, l, o, rec := setup(t, page)
	o.Mutate(func() {
		doc.AppendChild(doc.Body(), doc.CreateElement("aside"))
	})
	l.RunUntilIdle()

	if len(rec.events) != 0 {
		t.Errorf("mutations inside Mutate should be invisible, got %v", rec.events)
	}
	if !o.Observing() {
		t.Error("observer should resume after Mutate")
	}
}

func TestStopFlushesPending(t *testing.T) {
	doc, l, o, rec := setup(t, page)
	doc.AppendChild(doc.Body(), doc.CreateElement("footer"))
	o.Stop()

	if want := []string{"added footer"}; !reflect.DeepEqual(rec.events, want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}

	doc.AppendChild(doc.Body(), doc.CreateElement("nav"))
	l.RunUntilIdle()
	if len(rec.events) != 1 {
		t.Errorf("stopped observer should record nothing, got %v", rec.events)
	}
}
