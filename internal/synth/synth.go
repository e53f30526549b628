// Package synth generates test signals for packets.
package synth

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Sine returns n samples of a unit sine wave at freq Hz sampled at rate Hz.
func Sine(n int, freq float64, rate uint32) []float32 {
	if n <= 0 || rate == 0 {
		return nil
	}
	samples := make([]float32, n)
	step := 2 * math.Pi * freq / float64(rate)
	for i := range samples {
		samples[i] = float32(math.Sin(step * float64(i)))
	}
	return samples
}

// Spectrum returns the magnitudes of the n/2+1 non-negative frequency bins of
// the real FFT of samples.
func Spectrum(samples []float32) []float32 {
	if len(samples) == 0 {
		return nil
	}
	seq := make([]float64, len(samples))
	for i, v := range samples {
		seq[i] = float64(v)
	}
	coeffs := fourier.NewFFT(len(seq)).Coefficients(nil, seq)
	mags := make([]float32, len(coeffs))
	for i, c := range coeffs {
		mags[i] = float32(cmplx.Abs(c))
	}
	return mags
}
