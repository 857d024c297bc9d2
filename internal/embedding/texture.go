package embedding

import "math"

// ExtractTexture computes color statistics for each texture region: mean R, G, B and the
// standard deviation of R, all scaled to [0,1]. Each region takes four slots; a region
// whose box covers no pixels keeps its slots at zero. Unused slots stay zero.
//
// Statistics take two passes over the box: means first, then deviation from those means.
func ExtractTexture(img FaceImage, points LandmarkSet) [TextureSlots]float32 {
	var features [TextureSlots]float32
	slot := 0

	for _, region := range textureRegions {
		if slot+4 > TextureSlots {
			break
		}
		x1, y1, x2, y2 := regionBox(region, points, img.Width, img.Height)
		rMean, gMean, bMean, rStd, ok := regionStats(img, x1, y1, x2, y2)
		if ok {
			features[slot] = float32(rMean / 255)
			features[slot+1] = float32(gMean / 255)
			features[slot+2] = float32(bMean / 255)
			features[slot+3] = float32(rStd / 255)
		}
		slot += 4
	}

	return features
}

// regionBox returns the pixel box [x1,x2) x [y1,y2) around the region's landmarks.
func regionBox(region []int, points LandmarkSet, width, height int) (x1, y1, x2, y2 int) {
	minX, maxX, minY, maxY := 1.0, 0.0, 1.0, 0.0
	for _, idx := range region {
		if idx >= len(points) {
			continue
		}
		p := points[idx]
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	x1 = max(0, int(math.Floor(minX*float64(width))))
	y1 = max(0, int(math.Floor(minY*float64(height))))
	x2 = int(math.Ceil(maxX * float64(width)))
	y2 = int(math.Ceil(maxY * float64(height)))
	return x1, y1, x2, y2
}

// regionStats runs the two passes over the clipped box. ok is false when no pixel is covered.
func regionStats(img FaceImage, x1, y1, x2, y2 int) (rMean, gMean, bMean, rStd float64, ok bool) {
	x2 = min(x2, img.Width)
	y2 = min(y2, img.Height)

	var rSum, gSum, bSum float64
	count := 0
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			i := (y*img.Width + x) * 4
			rSum += float64(img.Pix[i])
			gSum += float64(img.Pix[i+1])
			bSum += float64(img.Pix[i+2])
			count++
		}
	}
	if count == 0 {
		return 0, 0, 0, 0, false
	}

	n := float64(count)
	rMean, gMean, bMean = rSum/n, gSum/n, bSum/n

	var rVar float64
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			d := float64(img.Pix[(y*img.Width+x)*4]) - rMean
			rVar += d * d
		}
	}

	return rMean, gMean, bMean, math.Sqrt(rVar / n), true
}
