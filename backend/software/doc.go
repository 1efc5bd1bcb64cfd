// Package software implements the CPU reference backend.
//
// Triangles are rasterized with edge functions sampled at pixel centers
// and composited with premultiplied source-over blending. The backend is
// deterministic and has no GPU dependency, which makes it the reference
// for cross-backend tests and headless capture.
//
// Importing the package registers it under the name "software":
//
//	import _ "github.com/gogpu/rapid/backend/software"
package software
