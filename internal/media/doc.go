// Package media manages the image files a converter extracts next to the
// Markdown output: flattening nested directories into one folder and
// downscaling oversized raster images.
package media
