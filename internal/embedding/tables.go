package embedding

// The tables below define the feature space. Reordering or editing any entry changes
// every embedding and breaks comparison with templates enrolled earlier.

// anchorPoints contribute raw coordinates.
var anchorPoints = [...]int{
	// Face outline
	10, 338, 297, 332, 284, 251, 389, 356, 454, 323,
	// Left eye
	33, 160, 158, 133, 153, 144,
	// Right eye
	362, 385, 387, 263, 373, 380,
	// Nose
	1, 2, 98, 327, 168,
	// Mouth
	61, 291, 0, 17, 269,
	// Eyebrows
	70, 63, 105, 66, 107, 336, 296, 334, 293, 300,
}

// distancePairs contribute 3D Euclidean distances.
var distancePairs = [...][2]int{
	// Eye widths, inter-eye
	{33, 133}, {362, 263}, {33, 362},
	// Nose to eyes
	{1, 33}, {1, 362},
	// Mouth width and height
	{61, 291}, {0, 17},
	// Face width and height
	{234, 454}, {10, 152},
	// Eyebrows
	{70, 300}, {63, 293},
	// Nose to mouth
	{1, 0}, {2, 17},
	// Eye to mouth
	{33, 61}, {362, 291},
}

// angleTriples contribute the 2D angle at the middle point.
var angleTriples = [...][3]int{
	// Eyes
	{33, 133, 362}, {362, 263, 33},
	// Nose
	{1, 2, 98}, {1, 2, 327},
	// Mouth
	{61, 0, 291}, {61, 17, 291},
	// Face profile
	{10, 1, 152}, {234, 1, 454},
}

// ratioPairs contribute distance(first) / distance(second).
var ratioPairs = [...][2][2]int{
	{{33, 133}, {234, 454}},  // left eye width / face width
	{{362, 263}, {234, 454}}, // right eye width / face width
	{{1, 2}, {10, 152}},      // nose height / face height
	{{61, 291}, {234, 454}},  // mouth width / face width
	{{33, 362}, {234, 454}},  // eye separation / face width
}

// textureRegions are sampled for color statistics, in this order.
var textureRegions = [...][]int{
	{33, 160, 158, 133, 153, 144},  // left eye
	{362, 385, 387, 263, 373, 380}, // right eye
	{1, 2, 98, 327, 168, 6},        // nose
	{61, 291, 0, 17, 269, 405},     // mouth
}
