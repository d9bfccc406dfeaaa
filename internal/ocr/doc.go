// Package ocr supplies the text tokens that the grouping engine works on.
//
// Two engines implement Recognizer:
//
//   - VisionRecognizer calls Google Cloud Vision text detection. Its first
//     annotation is the whole detected text block, followed by one annotation
//     per word.
//   - TesseractRecognizer runs Tesseract locally via gosseract/v2 and emits the
//     same shape: a synthetic whole-page annotation followed by word boxes.
//
// Both return annotations with four vertices ordered clockwise from the
// top-left corner, so grouping.Normalize can treat them alike.
//
// # Prerequisites
//
// TesseractRecognizer needs the Tesseract library and language data installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// VisionRecognizer needs Google Cloud credentials. The credentials file is
// passed explicitly to NewVisionClient; the process environment is never
// modified.
//
// # Error Handling
//
// Any failure to obtain annotations is returned as a *RetrievalError naming
// the engine. Without annotations nothing can be grouped, so callers treat it
// as fatal for that image.
package ocr
