package rules

import (
	"strings"
	"unicode"
)

// Render draws the position the way the terminal loop prints it, rank 8
// at the top, files a-h left to right.
func (b *Board) Render() string {
	placement := strings.Split(b.Fen(), " ")[0]
	ranks := strings.Split(placement, "/")

	var sb strings.Builder
	for i, rank := range ranks {
		sb.WriteString("87654321"[i : i+1])
		sb.WriteString(" ")
		for _, c := range rank {
			if unicode.IsDigit(c) {
				for n := 0; n < int(c-'0'); n++ {
					sb.WriteString(" .")
				}
			} else {
				sb.WriteString(" ")
				sb.WriteRune(c)
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   a b c d e f g h\n")
	return sb.String()
}
