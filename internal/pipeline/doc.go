// Package pipeline wraps the external OCR engine behind a single call:
// given the path of a stored file, return an OCRResult or fail.
//
// The Tesseract engine is compiled in only with the tesseract build tag,
// because the gosseract binding needs libtesseract and leptonica headers:
//
//	go build -tags tesseract ./...
//
// Without the tag, or when the engine fails its startup probe, the Adapter
// reports ErrEngineUnavailable for every call and the web layer shows a
// placeholder instead of a result.
//
// PDF uploads bypass OCR: the Document engine reads their text layer and
// detects tables with the pure Go tabula library.
package pipeline
