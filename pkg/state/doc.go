// Package state defines the persistence boundary for style settings: loading
// and saving the settings snapshot of one kit, page or widget, stacking those
// snapshots into a styles.LayerStack, and rendering a widget's CSS from them.
//
// Responsibilities:
//   - Store[T] only loads/saves a single snapshot for a single Ref.
//   - Resolver loads snapshots for several refs and builds the layer stack the
//     compiler resolves against. Meta.SnapshotID becomes the layer's
//     SnapshotID, which surfaces in provenance.
//   - Renderer compiles a widget from its stack and uses the compiler's cache
//     key as an ETag, so callers can answer conditional requests without
//     recompiling.
//
// Data flow:
//
//	Store -> Resolver.Stack -> styles.LayerStack -> Compiler.Compile -> CSS
package state
