package channelizer

import "github.com/hydrasdr/hydrasdr-433/internal/kaiser"

// filterSemiLen is m: the filter semi-length in symbols. 2*M*m+1 taps
// total, 2m taps per polyphase branch.
const filterSemiLen = 24

// filterStopbandDB is the target stopband attenuation of the prototype
// lowpass filter.
const filterStopbandDB = 80.0

// cutoffRatio sets the prototype cutoff at 90% of channel spacing,
// leaving 10% as transition band for stopband rejection at channel
// edges.
const cutoffRatio = 0.9

// designBranches builds the M reversed-order polyphase branches of the
// prototype Kaiser lowpass filter, each of length tapsPerBranch.
func designBranches(numChannels, tapsPerBranch int) [][]float32 {
	totalTaps := 2*numChannels*filterSemiLen + 1
	fc := cutoffRatio / float64(numChannels)

	proto := make([]float64, totalTaps)
	kaiser.DesignLowpass(proto, fc, filterStopbandDB)

	branches := make([][]float32, numChannels)
	for i := 0; i < numChannels; i++ {
		branch := make([]float32, tapsPerBranch)
		for n := 0; n < tapsPerBranch; n++ {
			protoIdx := i + n*numChannels
			if protoIdx < totalTaps {
				// Stored reversed for a forward-walking dot product.
				branch[tapsPerBranch-n-1] = float32(proto[protoIdx])
			}
		}
		branches[i] = branch
	}
	return branches
}
