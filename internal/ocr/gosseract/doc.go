// Package gosseract provides the in-process multi-script OCR engine used for
// the higher-accuracy passes (eng+hin by default). It needs cgo and
// libtesseract; build with -tags nomultiscript to leave it out.
package gosseract
