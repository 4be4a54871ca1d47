// Package testing provides a tree testing harness for weft.
//
// # Quick Start
//
// Create a tester over some markup, trace the directives of interest, start
// the engine and assert on the activation log:
//
//	func TestMyComponent(t *testing.T) {
//	    tester := weftest.NewTreeTester(t, `<div x-data><p x-text="msg"></p></div>`)
//	    tester.Trace("data", "text")
//	    tester.Start()
//
//	    want := []string{"div x-data", "p x-text"}
//	    if got := tester.Activations(); !reflect.DeepEqual(got, want) {
//	        t.Errorf("activations = %v, want %v", got, want)
//	    }
//	}
//
// # Mutations
//
// Mutate the document through tester.Document() and call Pump to deliver
// mutation records, deferred teardown and re-raised failures:
//
//	p := tester.Find(weftest.ByTag("p")).First()
//	tester.Document().RemoveChild(p)
//	tester.Pump()
//
// # Failures
//
// Failures the engine re-raises are captured instead of going to the global
// handler; read them with Uncaught. Use TryStart to assert on start errors. Engine warnings are captured as JSON log
// lines; read them with Logs.
package testing
