// Package sink writes concept maps to image formats.
//
// [RenderSVG] produces a standalone SVG document of the whole canvas at
// zoom 1.0, carrying a title and a description. [RenderPNG] paints the same
// scene into a raster image with fogleman/gg and the bundled Go Regular
// font. [RenderPDF] converts the SVG with rsvg-convert.
//
// All renderers take the document only; the editor's zoom never affects an
// export.
package sink
