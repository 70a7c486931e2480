// Package app is the root package of all domain related packages.
//
// All entity types and service interfaces are defined in this package.
package app

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default formats and sizes
const (
	FloatFormat   = "#,###.##"
	IconPixelSize = 64
)

// Titler converts a string into a title for english language.
var Titler = cases.Title(language.English)
