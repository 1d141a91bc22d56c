package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize runs over a .dmz file's raw bytes before New ever sees
// them: strip a leading UTF-8 BOM, then fold to NFC so an identifier
// typed in NFD form (an accented letter as base+combining-mark rather
// than one precomposed rune) still interns and compares equal to the
// same identifier spelled the other way. IsNormal is the cheap check,
// so source that is already NFC — the overwhelming majority — costs no
// allocation.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}
