package ignore

import (
	"path"
	"strings"
)

// binaryExts are leaf-name extensions treated as binary without ever
// opening the file. Detection is by name only so the decision is cheap
// and deterministic.
var binaryExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {},
	".webp": {}, ".tiff": {}, ".svgz": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".bz2": {}, ".xz": {}, ".7z": {}, ".rar": {},
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".a": {}, ".o": {}, ".obj": {},
	".bin": {}, ".dat": {}, ".db": {}, ".sqlite": {}, ".sqlite3": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	".mp3": {}, ".mp4": {}, ".wav": {}, ".ogg": {}, ".flac": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".webm": {},
	".wasm": {}, ".class": {}, ".jar": {}, ".war": {}, ".pyc": {}, ".pyo": {},
	".iso": {}, ".dmg": {}, ".img": {},
}

// binaryNames are exact leaf names with no useful extension that are
// still known to be binary.
var binaryNames = map[string]struct{}{
	".DS_Store": {},
	"Thumbs.db": {},
}

// IsBinaryPath reports whether the leaf name of p looks like a binary
// file. Contents are never inspected.
func IsBinaryPath(p string) bool {
	leaf := path.Base(p)
	if _, ok := binaryNames[leaf]; ok {
		return true
	}
	ext := strings.ToLower(path.Ext(leaf))
	_, ok := binaryExts[ext]
	return ok
}
