package face

import "image"

// IoU returns the intersection over union of two boxes.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}

	intersection := float64(inter.Dx() * inter.Dy())
	union := float64(a.Dx()*a.Dy()+b.Dx()*b.Dy()) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// BestOverlap returns the index of the candidate overlapping box the most, or
// -1 when none reaches minIoU.
func BestOverlap(box image.Rectangle, candidates []image.Rectangle, minIoU float64) int {
	best, bestIoU := -1, minIoU
	for i, c := range candidates {
		if v := IoU(box, c); v >= bestIoU {
			best, bestIoU = i, v
		}
	}
	return best
}
