package biquad

import "math"

// Coefficients holds the transfer function of one biquad section with a0
// normalized to 1:
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
//
// Every filter family reduces to this one record; only synthesis differs.
// Values are immutable once synthesized and independent of signal history.
type Coefficients struct {
	B0, B1, B2 float32 // feedforward
	A1, A2     float32 // feedback
}

// Scale returns coefficients whose output is the input multiplied by amt.
func Scale(amt float32) Coefficients {
	return Coefficients{B0: amt}
}

// Passthrough returns coefficients whose output equals the input exactly.
func Passthrough() Coefficients {
	return Scale(unityScale)
}

// Mute returns coefficients whose output is always the zero sample.
func Mute() Coefficients {
	return Scale(muteScale)
}

// Lowpass passes frequencies below cutoff (Hz) and attenuates those above.
// Resonance is the boost near cutoff in dB.
//
// A cutoff at or above Nyquist passes the signal through untouched; a cutoff
// at or below zero mutes it.
func Lowpass(rate int, cutoff, resonance float32) Coefficients {
	cutoff = normalizeFrequency(rate, cutoff)

	if cutoff >= 1 {
		return Passthrough()
	} else if cutoff <= 0 {
		return Mute()
	}

	q := resonanceToQ(resonance)
	theta := angularFrequency(cutoff)
	alpha := sinf(theta) / (2 * q)
	cosw := cosf(theta)
	beta := (1 - cosw) * 0.5
	a0inv := 1 / (1 + alpha)

	return Coefficients{
		B0: a0inv * beta,
		B1: a0inv * 2 * beta,
		B2: a0inv * beta,
		A1: a0inv * -2 * cosw,
		A2: a0inv * (1 - alpha),
	}
}

// Highpass passes frequencies above cutoff (Hz) and attenuates those below.
// Resonance is the boost near cutoff in dB.
//
// A cutoff at or above Nyquist mutes the signal; a cutoff at or below zero
// passes it through untouched.
func Highpass(rate int, cutoff, resonance float32) Coefficients {
	cutoff = normalizeFrequency(rate, cutoff)

	if cutoff >= 1 {
		return Mute()
	} else if cutoff <= 0 {
		return Passthrough()
	}

	q := resonanceToQ(resonance)
	theta := angularFrequency(cutoff)
	alpha := sinf(theta) / (2 * q)
	cosw := cosf(theta)
	beta := (1 + cosw) * 0.5
	a0inv := 1 / (1 + alpha)

	return Coefficients{
		B0: a0inv * beta,
		B1: a0inv * -2 * beta,
		B2: a0inv * beta,
		A1: a0inv * -2 * cosw,
		A2: a0inv * (1 - alpha),
	}
}

// Bandpass passes a band of frequencies around freq (Hz). Q is the inverse of
// the fractional bandwidth.
//
// Frequencies outside (0, Nyquist) mute the signal. A non-positive Q passes
// it through.
func Bandpass(rate int, freq, q float32) Coefficients {
	freq = normalizeFrequency(rate, freq)

	if freq <= 0 || freq >= 1 {
		return Mute()
	} else if q <= 0 {
		return Passthrough()
	}

	w0 := angularFrequency(freq)
	alpha := sinf(w0) / (2 * q)
	k := cosf(w0)
	a0inv := 1 / (1 + alpha)

	return Coefficients{
		B0: a0inv * alpha,
		B1: 0,
		B2: a0inv * -alpha,
		A1: a0inv * -2 * k,
		A2: a0inv * (1 - alpha),
	}
}

// Notch attenuates a band of frequencies around freq (Hz).
//
// Frequencies outside (0, Nyquist) pass the signal through. A non-positive Q
// mutes it.
func Notch(rate int, freq, q float32) Coefficients {
	freq = normalizeFrequency(rate, freq)

	if freq <= 0 || freq >= 1 {
		return Passthrough()
	} else if q <= 0 {
		return Mute()
	}

	w0 := angularFrequency(freq)
	alpha := sinf(w0) / (2 * q)
	k := cosf(w0)
	a0inv := 1 / (1 + alpha)

	return Coefficients{
		B0: a0inv,
		B1: a0inv * -2 * k,
		B2: a0inv,
		A1: a0inv * -2 * k,
		A2: a0inv * (1 - alpha),
	}
}

// Peaking adds gain (dB) to the frequencies around freq (Hz).
//
// Frequencies outside (0, Nyquist) pass the signal through. A non-positive Q
// turns the filter into a flat gain of A².
func Peaking(rate int, freq, q, gain float32) Coefficients {
	freq = normalizeFrequency(rate, freq)

	if freq <= 0 || freq >= 1 {
		return Passthrough()
	}

	a := shelfAmplitude(gain)

	if q <= 0 {
		return Scale(a * a)
	}

	w0 := angularFrequency(freq)
	alpha := sinf(w0) / (2 * q)
	k := cosf(w0)
	a0inv := 1 / (1 + alpha/a)

	return Coefficients{
		B0: a0inv * (1 + alpha*a),
		B1: a0inv * -2 * k,
		B2: a0inv * (1 - alpha*a),
		A1: a0inv * -2 * k,
		A2: a0inv * (1 - alpha/a),
	}
}

// Allpass shifts phase around freq (Hz) without changing magnitude.
//
// Frequencies outside (0, Nyquist) pass the signal through. A non-positive Q
// inverts it.
func Allpass(rate int, freq, q float32) Coefficients {
	freq = normalizeFrequency(rate, freq)

	if freq <= 0 || freq >= 1 {
		return Passthrough()
	} else if q <= 0 {
		return Scale(invertScale)
	}

	w0 := angularFrequency(freq)
	alpha := sinf(w0) / (2 * q)
	k := cosf(w0)
	a0inv := 1 / (1 + alpha)

	return Coefficients{
		B0: a0inv * (1 - alpha),
		B1: a0inv * -2 * k,
		B2: a0inv * (1 + alpha),
		A1: a0inv * -2 * k,
		A2: a0inv * (1 - alpha),
	}
}

// Lowshelf adds gain (dB) to frequencies below freq (Hz).
//
// A frequency at or below zero, or Q == 0, passes the signal through; a
// frequency at or above Nyquist becomes a flat gain of A². Q values outside
// (0, 1] are not clamped: the slope term is floored at zero and the result is
// whatever the formula yields.
func Lowshelf(rate int, freq, q, gain float32) Coefficients {
	freq = normalizeFrequency(rate, freq)

	if freq <= 0 || q == 0 {
		return Passthrough()
	}

	a := shelfAmplitude(gain)

	if freq >= 1 {
		return Scale(a * a)
	}

	w0 := angularFrequency(freq)
	k, k2, ap1, am1 := shelfTerms(w0, q, a)
	a0inv := 1 / (ap1 + am1*k + k2)

	return Coefficients{
		B0: a0inv * a * (ap1 - am1*k + k2),
		B1: a0inv * 2 * a * (am1 - ap1*k),
		B2: a0inv * a * (ap1 - am1*k - k2),
		A1: a0inv * -2 * (am1 + ap1*k),
		A2: a0inv * (ap1 + am1*k - k2),
	}
}

// Highshelf adds gain (dB) to frequencies above freq (Hz).
//
// A frequency at or above Nyquist, or Q == 0, passes the signal through; a
// frequency at or below zero becomes a flat gain of A². Q values outside
// (0, 1] are not clamped, as for Lowshelf.
func Highshelf(rate int, freq, q, gain float32) Coefficients {
	freq = normalizeFrequency(rate, freq)

	if freq >= 1 || q == 0 {
		return Passthrough()
	}

	a := shelfAmplitude(gain)

	if freq <= 0 {
		return Scale(a * a)
	}

	w0 := angularFrequency(freq)
	k, k2, ap1, am1 := shelfTerms(w0, q, a)
	a0inv := 1 / (ap1 - am1*k + k2)

	return Coefficients{
		B0: a0inv * a * (ap1 + am1*k + k2),
		B1: a0inv * -2 * a * (am1 + ap1*k),
		B2: a0inv * a * (ap1 + am1*k - k2),
		A1: a0inv * 2 * (am1 - ap1*k),
		A2: a0inv * (ap1 - am1*k - k2),
	}
}

// shelfTerms computes the intermediate values shared by both shelves.
func shelfTerms(w0, q, a float32) (k, k2, ap1, am1 float32) {
	ainn := (a+1/a)*(1/q-1) + shelfSlopeOffset
	if ainn < 0 {
		ainn = 0
	}
	alpha := shelfAlphaFactor * sinf(w0) * sqrtf(ainn)

	k = cosf(w0)
	k2 = 2 * sqrtf(a) * alpha
	ap1 = a + 1
	am1 = a - 1
	return k, k2, ap1, am1
}

// normalizeFrequency maps Hz onto [0, 1] where 1 is Nyquist.
func normalizeFrequency(rate int, freq float32) float32 {
	nyquist := float32(rate) * nyquistFactor
	return freq / nyquist
}

func angularFrequency(normalized float32) float32 {
	return float32(math.Pi) * angularFactor * normalized
}

// resonanceToQ converts resonance in dB to a linear Q.
func resonanceToQ(resonance float32) float32 {
	return powf(decibelBase, resonance*resonanceDBFactor)
}

// shelfAmplitude returns the square root of the linear gain for gain in dB.
func shelfAmplitude(gain float32) float32 {
	return powf(decibelBase, gain*shelfGainDBFactor)
}

func sinf(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func cosf(x float32) float32 {
	return float32(math.Cos(float64(x)))
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func powf(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}
