package hh2

// resampleStereo converts an interleaved stereo int buffer from inRate to
// outRate, linearly interpolating between source frames. The source
// position is stepped with a fixed-point accumulator the same way the
// image rescaler steps its horizontal accumulator across a source row
// (accumulate a fixed step per output sample, carry the fractional
// remainder into the interpolation weight) — adapted here to the time axis
// of interleaved audio frames instead of a row of pixels, since no Speex
// resampler port was found in the retrieved library set.
func resampleStereo(stereo []int, inRate, outRate int) ([]int, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, &ResamplerError{Detail: "sample rate must be positive"}
	}

	inFrames := len(stereo) / 2
	if inFrames == 0 {
		return nil, nil
	}

	outFrames := int(int64(inFrames) * int64(outRate) / int64(inRate))
	if outFrames == 0 {
		return nil, &ResamplerError{Detail: "resampled output has zero frames"}
	}

	const fracBits = 16
	const one = int64(1) << fracBits

	step := (int64(inRate) << fracBits) / int64(outRate)
	pos := int64(0)

	out := make([]int, outFrames*2)

	for i := 0; i < outFrames; i++ {
		srcIdx := int(pos >> fracBits)
		frac := pos & (one - 1)

		if srcIdx >= inFrames-1 {
			srcIdx = inFrames - 1
			frac = 0
		}

		nextIdx := srcIdx
		if srcIdx < inFrames-1 {
			nextIdx = srcIdx + 1
		}

		for ch := 0; ch < 2; ch++ {
			a := int64(stereo[srcIdx*2+ch])
			b := int64(stereo[nextIdx*2+ch])
			out[i*2+ch] = int((a*(one-frac) + b*frac) >> fracBits)
		}

		pos += step
	}

	return out, nil
}
