// Package resources serves the grid viewer's static assets.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Stylesheet is the viewer stylesheet, relative to the static root.
const Stylesheet = "leapgrid.css"

// DatastarScript is the client runtime driving the SSE patches.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
