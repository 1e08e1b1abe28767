package vision

import (
	"image"
	"math"
)

// Match is the top-left corner of a located template plus its score
type Match struct {
	X     int
	Y     int
	Score float64
}

// coarseStride trades accuracy for speed on the first scan pass; the best
// coarse hit is refined at full resolution afterwards.
const coarseStride = 2

// MatchTemplate finds the template in the frame by grayscale normalized
// cross-correlation. Returns the best match and whether its score cleared
// the threshold. A coarse strided scan locates the neighborhood, then a
// full-resolution pass refines it.
func MatchTemplate(frame, template image.Image, threshold float64) (Match, bool) {
	frameGray := toGray(frame)
	tmplGray := toGray(template)

	fw, fh := frameGray.w, frameGray.h
	tw, th := tmplGray.w, tmplGray.h
	if tw == 0 || th == 0 || tw > fw || th > fh {
		return Match{}, false
	}

	best := Match{Score: -1}
	for y := 0; y <= fh-th; y += coarseStride {
		for x := 0; x <= fw-tw; x += coarseStride {
			score := ncc(frameGray, tmplGray, x, y, coarseStride)
			if score > best.Score {
				best = Match{X: x, Y: y, Score: score}
			}
		}
	}
	if best.Score < 0 {
		return Match{}, false
	}

	// Refine around the coarse winner at full resolution
	refined := best
	refined.Score = -1
	for dy := -coarseStride; dy <= coarseStride; dy++ {
		for dx := -coarseStride; dx <= coarseStride; dx++ {
			x, y := best.X+dx, best.Y+dy
			if x < 0 || y < 0 || x > fw-tw || y > fh-th {
				continue
			}
			score := ncc(frameGray, tmplGray, x, y, 1)
			if score > refined.Score {
				refined = Match{X: x, Y: y, Score: score}
			}
		}
	}

	return refined, refined.Score >= threshold
}

// grayImage is a flat float view of an image's luma channel
type grayImage struct {
	pix  []float64
	w, h int
}

func (g grayImage) at(x, y int) float64 {
	return g.pix[y*g.w+x]
}

func toGray(img image.Image) grayImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := grayImage{pix: make([]float64, w*h), w: w, h: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, gr, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Rec. 601 luma, 16-bit channels
			g.pix[y*w+x] = 0.299*float64(r) + 0.587*float64(gr) + 0.114*float64(b)
		}
	}
	return g
}

// ncc computes normalized cross-correlation of the template against the
// frame at (ox, oy), sampling every step-th pixel
func ncc(frame, tmpl grayImage, ox, oy, step int) float64 {
	var cross, frameSq, tmplSq float64
	for ty := 0; ty < tmpl.h; ty += step {
		for tx := 0; tx < tmpl.w; tx += step {
			tp := tmpl.at(tx, ty)
			fp := frame.at(ox+tx, oy+ty)
			cross += tp * fp
			tmplSq += tp * tp
			frameSq += fp * fp
		}
	}

	denom := tmplSq * frameSq
	if denom <= 0 {
		return 0
	}
	return cross / math.Sqrt(denom)
}
