package tracing

// Span attribute keys.
const (
	AttrModelID = "model.id"

	AttrTreeNodes  = "tree.nodes"
	AttrTreeRoots  = "tree.roots"
	AttrTreeErrors = "tree.errors"

	AttrShapeName        = "shape.name"
	AttrShapeKind        = "shape.kind"
	AttrShapeFingerprint = "shape.fingerprint"
	AttrShapeSections    = "shape.sections"
	AttrShapeTools       = "shape.tools"

	AttrCacheHit = "cache.hit"

	AttrDocumentPath       = "document.path"
	AttrDocumentComponents = "document.components"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanTreeRebuild  = "positioning.rebuild"
	SpanKernelLoft   = "kernel.loft"
	SpanKernelCut    = "kernel.cut"
	SpanDocumentLoad = "document.load"
)
