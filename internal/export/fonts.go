package export

import (
	"fmt"
	"strings"

	bold "codeberg.org/go-fonts/liberation/liberationsansbold"
	italic "codeberg.org/go-fonts/liberation/liberationsansitalic"
	regular "codeberg.org/go-fonts/liberation/liberationsansregular"
	"codeberg.org/go-pdf/fpdf"
)

const fontFamily = "LiberationSans"

// fontFace is one TTF registered with every document.
type fontFace struct {
	style string
	ttf   []byte
}

// defaultFaces are Unicode TTFs with full Vietnamese coverage; the core PDF fonts
// only know Latin-1.
func defaultFaces() []fontFace {
	return []fontFace{
		{style: "", ttf: regular.TTF},
		{style: "B", ttf: bold.TTF},
		{style: "I", ttf: italic.TTF},
	}
}

func registerFonts(pdf *fpdf.Fpdf, faces []fontFace) error {
	if len(faces) == 0 {
		return fmt.Errorf("%w: no fonts configured", ErrRendererUnavailable)
	}
	for _, f := range faces {
		if len(f.ttf) == 0 {
			return fmt.Errorf("%w: font %q style %q is empty", ErrRendererUnavailable, fontFamily, f.style)
		}
		pdf.AddUTF8FontFromBytes(fontFamily, f.style, f.ttf)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
	}
	return nil
}

func upper(s string) string {
	return strings.ToUpper(s)
}
