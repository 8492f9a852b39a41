package skeleton

import (
	"path"
	"strings"
)

// Lang identifies a source language with a registered grammar.
type Lang int

const (
	LangNone Lang = iota
	LangJavaScript
	LangTypeScript
	LangTSX
	LangC
	LangCPP
	LangJava
	LangKotlin
	LangPython
)

var langNames = map[Lang]string{
	LangNone:       "none",
	LangJavaScript: "javascript",
	LangTypeScript: "typescript",
	LangTSX:        "tsx",
	LangC:          "c",
	LangCPP:        "cpp",
	LangJava:       "java",
	LangKotlin:     "kotlin",
	LangPython:     "python",
}

func (l Lang) String() string {
	if n, ok := langNames[l]; ok {
		return n
	}
	return "unknown"
}

// Strategy selects how function bodies are hollowed out for a language.
type Strategy int

const (
	// StrategyNone leaves the file untouched.
	StrategyNone Strategy = iota

	// StrategyStructured rewrites ECMAScript-family sources with doc
	// comment relocation and idempotent re-runs.
	StrategyStructured

	// StrategyGeneric blanks definition bodies by node kind, shared
	// across the brace and indentation families.
	StrategyGeneric
)

// Strategy returns the hollowing strategy for a language.
func (l Lang) Strategy() Strategy {
	switch l {
	case LangJavaScript, LangTypeScript, LangTSX:
		return StrategyStructured
	case LangC, LangCPP, LangJava, LangKotlin, LangPython:
		return StrategyGeneric
	default:
		return StrategyNone
	}
}

var extLangs = map[string]Lang{
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".jsx":  LangTSX,
	".ts":   LangTypeScript,
	".mts":  LangTypeScript,
	".cts":  LangTypeScript,
	".tsx":  LangTSX,
	".c":    LangC,
	".h":    LangC,
	".cc":   LangCPP,
	".cpp":  LangCPP,
	".cxx":  LangCPP,
	".hpp":  LangCPP,
	".hh":   LangCPP,
	".java": LangJava,
	".kt":   LangKotlin,
	".kts":  LangKotlin,
	".py":   LangPython,
}

// Detect maps a file path to its language by extension alone.
func Detect(p string) Lang {
	ext := strings.ToLower(path.Ext(p))
	if l, ok := extLangs[ext]; ok {
		return l
	}
	return LangNone
}
