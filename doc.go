// Package epub2md converts EPUB e-books into cleaned Markdown documents with
// extracted images and a YAML frontmatter block.
//
// # Quick Start
//
// Create a converter and convert a book:
//
//	conv, err := epub2md.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, epub2md.Input{EPUBPath: "book.epub"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.OutputPath) // book/book.md
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Metadata extraction from the OPF package document
//  2. EPUB to raw Markdown, via pandoc or the pure Go native backend
//  3. Image flattening and optional downscaling on disk
//  4. Cleanup rules (block wrappers, spans, headers, links, images,
//     whitespace, final artifact sweep)
//  5. Frontmatter synthesis
//  6. A goldmark audit of the written document
//
// # Building Blocks
//
// Each stage is usable on its own:
//
//	cleaned, report := epub2md.Clean(raw, epub2md.DefaultCleanOptions())
//	doc, stats, err := epub2md.NormalizeImages(ctx, cleaned, "out/images", epub2md.ImageOptions{})
//	header := epub2md.SynthesizeFrontmatter(md, epub2md.FrontmatterConfig{})
//
// # Parallel Processing
//
// A Converter holds no per-conversion state and is safe for concurrent use.
// Size worker pools with ResolvePoolSize.
package epub2md
