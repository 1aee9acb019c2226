package eval_test

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/meko-tech/jsengine/pkg/engine"
)

// TestEvalFixtures runs a set of representative programs end-to-end
// through pkg/engine and snapshot-asserts their completion value, one
// snaps.MatchSnapshot call per named case, with inline source strings.
func TestEvalFixtures(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"arithmetic", `(2 + 3) * 4 - 1`},
		{"closures", `function counter(){ let n = 0; return () => ++n; } const c = counter(); c(); c(); c()`},
		{"destructuring", `const {a, b: {c}} = {a: 1, b: {c: 2}}; a + c`},
		{"template_literals", "const name = 'world'; `hello, ${name}!`"},
		{"array_methods", `[5,3,1,4,2].sort().join(',')`},
		{"class_inheritance", `class Animal { constructor(name){ this.name = name; } speak(){ return this.name + ' makes a sound'; } } class Dog extends Animal { speak(){ return super.speak() + ', woof'; } } new Dog('Rex').speak()`},
		{"exception_handling", `function risky(){ throw new RangeError('out of range'); } let caught; try { risky(); } catch (e) { caught = e.name + ': ' + e.message; } caught`},
		{"generators", `function* gen(){ yield 1; yield 2; yield 3; } [...gen()].join(',')`},
		{"optional_chaining", `const o = { a: { b: null } }; o?.a?.b?.c ?? 'fallback'`},
		{"json_round_trip", `JSON.stringify(JSON.parse('{"x":[1,2,3]}'))`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := engine.New()
			if err != nil {
				t.Fatalf("creating engine: %v", err)
			}
			defer e.Close()

			v, err := e.EvaluateSync(tc.src, "<fixture>")
			if err != nil {
				snaps.MatchSnapshot(t, fmt.Sprintf("%s_error", tc.name), err.Error())
				return
			}
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_result", tc.name), v.String())
		})
	}
}
