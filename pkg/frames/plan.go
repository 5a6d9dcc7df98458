package frames

import "math"

// FallbackFPS is used when a container reports no usable frame rate.
const FallbackFPS = 25.0

// Plan computes the frame indices to sample for full-duration coverage.
//
// The target count is duration * samplingFPS, clamped to [1, maxFrames].
// Indices are spaced evenly across [0, totalFrames-1] inclusive, so the
// first sampled frame sits at the start of the video and the last at the
// end. Rounding can collapse neighbouring indices when the target exceeds
// the frame count; duplicates are dropped, so the result may be shorter
// than the target but is always strictly ascending.
func Plan(totalFrames int, fps float64, maxFrames int, samplingFPS float64) []int {
	if totalFrames <= 1 {
		return []int{0}
	}
	if fps <= 0 {
		fps = FallbackFPS
	}

	duration := float64(totalFrames) / fps
	target := int(math.Floor(duration * samplingFPS))
	if target > maxFrames {
		target = maxFrames
	}
	if target < 1 {
		target = 1
	}

	if target == 1 {
		return []int{0}
	}

	indices := make([]int, 0, target)
	step := float64(totalFrames-1) / float64(target-1)
	for i := 0; i < target; i++ {
		idx := int(math.Round(float64(i) * step))
		if len(indices) > 0 && idx <= indices[len(indices)-1] {
			continue
		}
		indices = append(indices, idx)
	}
	return indices
}
