// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// LANGUAGE
// =============================================================================

// Language is a language tag understood by the analyzer.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguagePython     Language = "python"
	LanguageUnknown    Language = "unknown"

	// LanguageAuto is accepted as a hint and means "detect from the path".
	LanguageAuto Language = "auto"
)

// String returns the tag.
func (l Language) String() string {
	return string(l)
}

// Supported reports whether an adapter exists for the language.
func (l Language) Supported() bool {
	switch l {
	case LanguageJavaScript, LanguageTypeScript, LanguageHTML, LanguageCSS, LanguagePython:
		return true
	default:
		return false
	}
}

// SupportedLanguages lists the language tags in a stable order.
func SupportedLanguages() []Language {
	return []Language{
		LanguageJavaScript,
		LanguageTypeScript,
		LanguageHTML,
		LanguageCSS,
		LanguagePython,
	}
}

// extensionTable maps lower-cased extensions to languages.
var extensionTable = map[string]Language{
	".js":   LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".tsx":  LanguageTypeScript,
	".html": LanguageHTML,
	".htm":  LanguageHTML,
	".css":  LanguageCSS,
	".py":   LanguagePython,
}

// LanguageFromPath detects the language from a file path.
//
// Description:
//
//	Looks the extension up in the fixed table, case-insensitively.
//	Unrecognized extensions map to LanguageUnknown.
//
// Inputs:
//
//	filePath - Path to the file (relative or absolute)
//
// Outputs:
//
//	Language - The detected language tag
func LanguageFromPath(filePath string) Language {
	if lang, ok := extensionTable[strings.ToLower(filepath.Ext(filePath))]; ok {
		return lang
	}
	return LanguageUnknown
}

// ResolveLanguage picks the language for a path and an optional hint.
//
// Description:
//
//	A hint naming a supported language is used directly. An empty hint,
//	"auto", or any unrecognized hint falls back to extension detection.
//
// Inputs:
//
//	filePath - Path to the file
//	hint - Optional language hint
//
// Outputs:
//
//	Language - The resolved tag, possibly LanguageUnknown
func ResolveLanguage(filePath, hint string) Language {
	lang := Language(strings.ToLower(strings.TrimSpace(hint)))
	if lang.Supported() {
		return lang
	}
	return LanguageFromPath(filePath)
}
