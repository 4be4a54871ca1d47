package lifecycle_test

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/lifecycle"
)

// This example shows how to start a runtime over a parsed document.
// Directives are registered on the runtime's registry before Start.
func ExampleRuntime() {
	doc, err := dom.ParseString(`<body>
<div x-data><span x-text="greeting"></span></div>
</body>`)
	if err != nil {
		panic(err)
	}

	rt := lifecycle.NewRuntime(doc, zerolog.Nop())

	// Print every text directive as it activates
	rt.Directives.Register("text", directive.Definition{
		Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
			fmt.Printf("text on <%s>: %s\n", el.Data, d.Expression)
			return nil
		},
	})

	if err := rt.Start(); err != nil {
		panic(err)
	}

	// Output:
	// text on <span>: greeting
}

// This example shows how lifecycle events bracket the initial scan.
func ExampleEngine_Start() {
	doc, _ := dom.ParseString(`<body><div x-data></div></body>`)
	rt := lifecycle.NewRuntime(doc, zerolog.Nop())

	for _, name := range []string{lifecycle.EventInit, lifecycle.EventInitializing, lifecycle.EventInitialized} {
		doc.AddEventListener(name, func(e dom.Event) {
			fmt.Println(e.Name)
		})
	}
	rt.Directives.Register("data", directive.Definition{
		Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
			fmt.Println("data activated")
			return nil
		},
	})

	if err := rt.Start(); err != nil {
		panic(err)
	}

	// Output:
	// weft:init
	// weft:initializing
	// data activated
	// weft:initialized
}

// This example shows how to locate the root that manages an element.
func ExampleEngine_ClosestRoot() {
	doc, _ := dom.ParseString(`<body><div id="app" x-data><p><b id="leaf"></b></p></div></body>`)
	rt := lifecycle.NewRuntime(doc, zerolog.Nop())

	root, err := rt.Engine.ClosestRoot(doc.GetElementByID("leaf"))
	if err != nil {
		panic(err)
	}
	fmt.Println(dom.Describe(root))

	// Output:
	// div#app
}
