//go:build ruleguard

// Package gorules contains custom linting rules for golangci-lint via ruleguard.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupModernize detects WaitGroup patterns that can use wg.Go().
//
// Old pattern:
//
//	wg.Add(1)
//	go func() {
//	    defer wg.Done()
//	    doSomething()
//	}()
//
// New pattern:
//
//	wg.Go(func() {
//	    doSomething()
//	})
func WaitGroupModernize(m dsl.Matcher) {
	m.Match(`go func() { defer $wg.Done(); $*_ }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("Use $wg.Go(func() { ... }) instead of go func() { defer $wg.Done(); ... }()").
		Suggest("$wg.Go(func() { $*_ })")

	m.Match(`$wg.Add(1)`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("Consider using $wg.Go() which calls Add(1) automatically")
}

// TestingContext flags background contexts in tests; use t.Context().
func TestingContext(m dsl.Matcher) {
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("use t.Context() in tests")
}

// StructuredErrors requires the errors builder in the workflow packages.
func StructuredErrors(m dsl.Matcher) {
	m.Match(`fmt.Errorf($*_)`).
		Where(m.File().PkgPath.Matches(`internal/(session|client|datastore|export|secrets|workspace|labeling)$`)).
		Report("use errors.Newf(...).Component(...).Category(...).Build() instead of fmt.Errorf")

	m.Match(`errors.New($msg).Build()`).
		Report("set at least a Category before Build()")
}

// ModuleLogger flags the slog default logger and the log package.
func ModuleLogger(m dsl.Matcher) {
	m.Match(`slog.Info($*_)`, `slog.Warn($*_)`, `slog.Error($*_)`, `slog.Debug($*_)`).
		Where(!m.File().PkgPath.Matches(`internal/logger$`)).
		Report("use logger.Global().Module(name) instead of the slog default logger")

	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Fatalf($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report("use the module logger from internal/logger")
}

// PathSegments flags client URLs built by concatenating IDs.
func PathSegments(m dsl.Matcher) {
	m.Match(`$base + "/projects/" + $id`, `$base + "/assets/" + $id`).
		Where(m.File().PkgPath.Matches(`internal/client$`) && m["id"].Type.Is("string")).
		Report("build request URLs with c.url(...) so segments are escaped")
}
