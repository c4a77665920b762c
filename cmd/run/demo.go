package main

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/wippyai/hostbridge/objhost"
)

// point is the object constructed by the demo Point class.
type point struct {
	X float64
	Y float64
}

func newPoint(x, y float64) *point {
	return &point{X: x, Y: y}
}

func (p *point) Distance(o *point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p *point) Add(o *point) *point {
	return &point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p *point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// counter is constructed by the demo Counter class.
type counter struct {
	Value int64
}

func newCounter(start int64) *counter {
	return &counter{Value: start}
}

func (c *counter) Incr() int64 {
	c.Value++
	return c.Value
}

// newDemoHost builds the object world served to guests: Math and console
// namespaces, Point and Counter classes, a few functions, and the globals
// from the config file.
func newDemoHost(out io.Writer, globals map[string]any, opts ...objhost.Option) *objhost.Host {
	h := objhost.New(opts...)

	m := objhost.NewNamespace()
	m.Set("PI", math.Pi)
	m.Set("sqrt", math.Sqrt)
	m.Set("pow", math.Pow)
	m.Set("floor", math.Floor)
	m.Set("max", func(first float64, rest ...float64) float64 {
		best := first
		for _, v := range rest {
			best = math.Max(best, v)
		}
		return best
	})
	m.Set("min", func(first float64, rest ...float64) float64 {
		best := first
		for _, v := range rest {
			best = math.Min(best, v)
		}
		return best
	})
	h.Define("Math", m)

	console := objhost.NewNamespace()
	console.Set("log", func(args ...any) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
	})
	h.Define("console", console)

	h.Define("Point", objhost.NewClass("Point", newPoint))
	h.Define("Counter", objhost.NewClass("Counter", newCounter))
	h.Define("greet", func(name string) string { return "Hello, " + name + "!" })
	h.Define("upcase", strings.ToUpper)
	h.Define("repeat", strings.Repeat)
	h.Define("fail", func(msg string) error { return fmt.Errorf("%s", msg) })

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Define(name, globals[name])
	}
	return h
}

// memberKind describes a namespace member for listings.
func memberKind(v any) string {
	switch v := v.(type) {
	case *objhost.Class:
		return "class " + v.Name
	case *objhost.Namespace:
		return "namespace"
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string = %q", v)
	case int64, float64, bool:
		return fmt.Sprintf("%T = %v", v, v)
	}
	return fmt.Sprintf("%T", v)
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
